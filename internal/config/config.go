package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/linalg"
	"github.com/san-kum/contactlqr/internal/models"
	"github.com/san-kum/contactlqr/internal/multibody"
)

const (
	DefaultModel          = "planar_body"
	DefaultStateWeight    = 1.0
	DefaultInputWeight    = 1.0
	DefaultSweepSpan      = 0.5
	DefaultSweepSteps     = 41
	DefaultMinCoefficient = 1e-9
)

// ErrInvalid marks a scenario that cannot be resolved against its mechanism.
var ErrInvalid = errors.New("config: invalid scenario")

// Config is a synthesis scenario: a mechanism, a static posture, the
// active contacts and the LQR weights.
type Config struct {
	Model          string          `yaml:"model" json:"model"`
	Posture        PostureConfig   `yaml:"posture" json:"posture"`
	Contacts       []ContactConfig `yaml:"contacts" json:"contacts"`
	Weights        WeightsConfig   `yaml:"weights" json:"weights"`
	RankTolerance  float64         `yaml:"rank_tolerance" json:"rank_tolerance"`
	MinCoefficient float64         `yaml:"min_coefficient" json:"min_coefficient"`
	Sweep          SweepConfig     `yaml:"sweep" json:"sweep"`
}

// PostureConfig is the linearization posture. An empty input selects
// gravity compensation.
type PostureConfig struct {
	Configuration []float64 `yaml:"configuration" json:"configuration"`
	Input         []float64 `yaml:"input,omitempty" json:"input,omitempty"`
}

type ContactConfig struct {
	Body   string     `yaml:"body" json:"body"`
	Offset [3]float64 `yaml:"offset" json:"offset"`
	Mode   string     `yaml:"mode" json:"mode"`
	Normal [3]float64 `yaml:"normal" json:"normal"`
}

// WeightsConfig holds the diagonals of Q and R. A single entry is repeated
// along the diagonal; an empty list selects the default weight.
type WeightsConfig struct {
	Q []float64 `yaml:"q" json:"q"`
	R []float64 `yaml:"r" json:"r"`
}

// SweepConfig drives the linearization error sweep: the configuration
// coordinate is offset over [-Span, Span] in Steps samples.
type SweepConfig struct {
	Coordinate int     `yaml:"coordinate" json:"coordinate"`
	Span       float64 `yaml:"span" json:"span"`
	Steps      int     `yaml:"steps" json:"steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:          DefaultModel,
		MinCoefficient: DefaultMinCoefficient,
		Sweep: SweepConfig{
			Span:  DefaultSweepSpan,
			Steps: DefaultSweepSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Posture.Configuration = append([]float64(nil), c.Posture.Configuration...)
	if c.Posture.Input != nil {
		out.Posture.Input = append([]float64(nil), c.Posture.Input...)
	}
	out.Contacts = append([]ContactConfig(nil), c.Contacts...)
	out.Weights.Q = append([]float64(nil), c.Weights.Q...)
	out.Weights.R = append([]float64(nil), c.Weights.R...)
	return &out
}

// State returns the static state of the posture; an empty configuration is
// the zero configuration.
func (c *Config) State(m *multibody.Mechanism) (*multibody.State, error) {
	if !dynamo.State(c.Posture.Configuration).IsValid() {
		return nil, fmt.Errorf("%w: posture configuration %v is not finite", ErrInvalid, c.Posture.Configuration)
	}
	s := multibody.NewState(m)
	if len(c.Posture.Configuration) == 0 {
		return s, nil
	}
	if err := s.SetConfiguration(c.Posture.Configuration); err != nil {
		return nil, err
	}
	return s, nil
}

// Input returns the feedforward input, nil for gravity compensation.
func (c *Config) Input(m *multibody.Mechanism) ([]float64, error) {
	if len(c.Posture.Input) == 0 {
		return nil, nil
	}
	if err := dynamo.CheckLen("posture input", m.Dims.NV, len(c.Posture.Input)); err != nil {
		return nil, err
	}
	return c.Posture.Input, nil
}

// ContactSet resolves the contact bodies of c against m.
func (c *Config) ContactSet(m *multibody.Mechanism) ([]contact.Contact, error) {
	out := make([]contact.Contact, 0, len(c.Contacts))
	for i, cc := range c.Contacts {
		body, ok := m.BodyIndex(cc.Body)
		if !ok {
			return nil, fmt.Errorf("%w: contact %d: mechanism %q has no body %q", ErrInvalid, i, m.Name, cc.Body)
		}
		mode, err := contact.ParseMode(cc.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: contact %d: %v", ErrInvalid, i, err)
		}
		out = append(out, contact.Contact{
			Point:  multibody.Point{Body: body, Offset: cc.Offset},
			Mode:   mode,
			Normal: cc.Normal,
		})
	}
	return out, nil
}

// CostMatrices returns Q (2nv×2nv) and R (nv×nv).
func (c *Config) CostMatrices(m *multibody.Mechanism) (q, r *mat.Dense, err error) {
	qd, err := diagonal("Q", c.Weights.Q, 2*m.Dims.NV, DefaultStateWeight)
	if err != nil {
		return nil, nil, err
	}
	rd, err := diagonal("R", c.Weights.R, m.Dims.NV, DefaultInputWeight)
	if err != nil {
		return nil, nil, err
	}
	return linalg.Diag(qd), linalg.Diag(rd), nil
}

func diagonal(what string, values []float64, n int, def float64) ([]float64, error) {
	out := make([]float64, n)
	switch len(values) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = values[0]
		}
	case n:
		copy(out, values)
	default:
		return nil, &dynamo.DimensionError{What: what + " weights", Want: n, Got: len(values)}
	}
	for i, v := range out {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s weight %d is negative", ErrInvalid, what, i)
		}
	}
	return out, nil
}

// Scenario is a Config resolved against a mechanism.
type Scenario struct {
	Mechanism *multibody.Mechanism
	State     *multibody.State
	Input     []float64 // nil selects gravity compensation
	Contacts  []contact.Contact
	Q, R      *mat.Dense
}

// Resolve looks the model up in reg and builds every synthesis input.
func (c *Config) Resolve(reg *models.Registry) (*Scenario, error) {
	m, err := reg.GetMechanism(c.Model)
	if err != nil {
		return nil, err
	}
	state, err := c.State(m)
	if err != nil {
		return nil, err
	}
	input, err := c.Input(m)
	if err != nil {
		return nil, err
	}
	contacts, err := c.ContactSet(m)
	if err != nil {
		return nil, err
	}
	q, r, err := c.CostMatrices(m)
	if err != nil {
		return nil, err
	}
	return &Scenario{Mechanism: m, State: state, Input: input, Contacts: contacts, Q: q, R: r}, nil
}

// Options returns the contact pipeline options selected by c.
func (c *Config) Options() []contact.Option {
	return []contact.Option{contact.WithRankTolerance(c.RankTolerance)}
}
