package optim

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/contactlqr/internal/config"
	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/logging"
	"github.com/san-kum/contactlqr/internal/metrics"
	"github.com/san-kum/contactlqr/internal/models"
)

// Weight scale parameter names.
const (
	ParamQ = "q"
	ParamR = "r"
)

// LogSpace returns n logarithmically spaced values in [lo, hi].
func LogSpace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	return floats.LogSpan(out, lo, hi)
}

// WeightObjective scores a scaling of cfg's LQR weights by the closed-loop
// spectral abscissa of the contact LQR. Gains whose largest entry exceeds
// maxGain are infeasible; maxGain <= 0 disables the bound.
func WeightObjective(cfg *config.Config, reg *models.Registry, maxGain float64, logger *slog.Logger) Objective {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		sc, err := cfg.Resolve(reg)
		if err != nil {
			return 0, err
		}
		if s, ok := params[ParamQ]; ok {
			sc.Q.Scale(s, sc.Q)
		}
		if s, ok := params[ParamR]; ok {
			sc.R.Scale(s, sc.R)
		}

		opts := append(cfg.Options(), contact.WithLogger(logger))
		syn, err := contact.Synthesize(sc.State, sc.Input, sc.Q, sc.R, sc.Contacts, opts...)
		if err != nil {
			return 0, err
		}
		if g := linalg.MaxAbs(syn.K); maxGain > 0 && g > maxGain {
			return 0, fmt.Errorf("optim: gain %.3g exceeds bound %.3g", g, maxGain)
		}
		stab := metrics.NewStability(0)
		if err := stab.Observe(syn.ClosedLoop()); err != nil {
			return 0, err
		}
		logger.Debug("weight candidate", "params", params, "abscissa", stab.Value())
		return stab.Value(), nil
	}
}
