package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/contactlqr/internal/config"
	"github.com/san-kum/contactlqr/internal/contact"
	"github.com/san-kum/contactlqr/internal/linearize"
	"github.com/san-kum/contactlqr/internal/logging"
	"github.com/san-kum/contactlqr/internal/metrics"
	"github.com/san-kum/contactlqr/internal/models"
	"github.com/san-kum/contactlqr/internal/multibody"
	"github.com/san-kum/contactlqr/internal/optim"
	"github.com/san-kum/contactlqr/internal/server"
	"github.com/san-kum/contactlqr/internal/storage"
	"github.com/san-kum/contactlqr/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	posture    []float64
	stateQ     []float64
	inputR     []float64
	coordinate int
	span       float64
	steps      int
	precision  int
	save       bool
	addr       string
	qRange     []float64
	rRange     []float64
	samples    int
	maxGain    float64
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "contactlqr",
		Short:         "contact-constrained LQR synthesis for multibody mechanisms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".contactlqr", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVar(&precision, "precision", 4, "decimals in printed matrices")

	lqrCmd := &cobra.Command{
		Use:   "lqr [model]",
		Short: "synthesize a contact-constrained LQR gain",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLQR,
	}
	scenarioFlags(lqrCmd)
	lqrCmd.Flags().BoolVar(&save, "save", true, "persist the synthesis report")

	jacobianCmd := &cobra.Command{
		Use:   "jacobian [model]",
		Short: "print the contact jacobian of a posture",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runJacobian,
	}
	scenarioFlags(jacobianCmd)

	linearizeCmd := &cobra.Command{
		Use:   "linearize [model]",
		Short: "print the constrained linearization and plot its error",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinearize,
	}
	scenarioFlags(linearizeCmd)
	linearizeCmd.Flags().IntVar(&coordinate, "coordinate", 0, "configuration coordinate to sweep")
	linearizeCmd.Flags().Float64Var(&span, "span", config.DefaultSweepSpan, "sweep half-width")
	linearizeCmd.Flags().IntVar(&steps, "steps", config.DefaultSweepSteps, "sweep samples")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search LQR weight scales for the fastest closed loop",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	scenarioFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&qRange, "q-range", []float64{0.1, 100}, "state weight scale range")
	tuneCmd.Flags().Float64SliceVar(&rRange, "r-range", []float64{0.1, 10}, "input weight scale range")
	tuneCmd.Flags().IntVar(&samples, "samples", 7, "log-spaced samples per range")
	tuneCmd.Flags().Float64Var(&maxGain, "max-gain", 0, "reject gains with a larger entry (0 disables)")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "concurrent syntheses (0 uses GOMAXPROCS)")

	mechanismsCmd := &cobra.Command{
		Use:   "mechanisms",
		Short: "list available mechanisms",
		RunE:  listMechanisms,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets for a mechanism",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := args[0]
			names := config.ListPresets(model)
			if len(names) == 0 {
				fmt.Printf("no presets for %s\n", model)
				return nil
			}
			fmt.Printf("presets for %s:\n", model)
			for _, name := range names {
				fmt.Printf("  - %s\n", name)
			}
			return nil
		},
	}

	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "list saved synthesis reports",
		RunE:  listReports,
	}

	showCmd := &cobra.Command{
		Use:   "show [report_id]",
		Short: "show a saved synthesis report",
		Args:  cobra.ExactArgs(1),
		RunE:  showReport,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve synthesis over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(lqrCmd, jacobianCmd, linearizeCmd, tuneCmd, mechanismsCmd, presetsCmd, reportsCmd, showCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.StatusUnstable.Render("error:"), err)
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset")
	cmd.Flags().Float64SliceVar(&posture, "q", nil, "posture configuration")
	cmd.Flags().Float64SliceVar(&stateQ, "weights-q", nil, "state weight diagonal")
	cmd.Flags().Float64SliceVar(&inputR, "weights-r", nil, "input weight diagonal")
}

func newLogger() *slog.Logger {
	return logging.New(logging.Level(verbose))
}

// loadScenario builds the scenario from, in increasing precedence, the
// defaults, a preset, a config file and explicit flags.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) == 1 && loaded.Model != args[0] {
			return nil, fmt.Errorf("config %s describes %q, not %q", configFile, loaded.Model, args[0])
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("q") {
		cfg.Posture.Configuration = posture
	}
	if flags.Changed("weights-q") {
		cfg.Weights.Q = stateQ
	}
	if flags.Changed("weights-r") {
		cfg.Weights.R = inputR
	}
	if flags.Lookup("coordinate") != nil {
		if flags.Changed("coordinate") {
			cfg.Sweep.Coordinate = coordinate
		}
		if flags.Changed("span") || cfg.Sweep.Span == 0 {
			cfg.Sweep.Span = span
		}
		if flags.Changed("steps") || cfg.Sweep.Steps == 0 {
			cfg.Sweep.Steps = steps
		}
	}
	return cfg, nil
}

func runLQR(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	sc, err := cfg.Resolve(models.NewRegistry())
	if err != nil {
		return err
	}

	logger := newLogger()
	opts := append(cfg.Options(), contact.WithLogger(logger))
	start := time.Now()
	syn, err := contact.Synthesize(sc.State, sc.Input, sc.Q, sc.R, sc.Contacts, opts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	stab := metrics.NewStability(0)
	if err := stab.Observe(syn.ClosedLoop()); err != nil {
		return err
	}
	input := sc.Input
	if input == nil {
		if input, err = contact.GravityCompensation(sc.State); err != nil {
			return err
		}
	}
	report := storage.NewReport(sc.Mechanism.Name, sc.State.Configuration(), input, len(sc.Contacts), syn, stab)
	report.Preset = preset

	m := sc.Mechanism
	fmt.Println(viz.BoxWithTitle("Contact Jacobian", viz.RenderMatrix(syn.Jc, nil, velocityLabels(m), precision)))
	fmt.Println(viz.BoxWithTitle("Gain K", viz.RenderMatrix(syn.K, inputLabels(m), stateLabels(m), precision)))
	printReport(report, elapsed)

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(report, syn.K)
	if err != nil {
		return err
	}
	fmt.Println(viz.Metric("saved", id))
	return nil
}

func runJacobian(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	sc, err := cfg.Resolve(models.NewRegistry())
	if err != nil {
		return err
	}
	jc, err := contact.Jacobian(sc.State, sc.Contacts, contact.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	rows, _ := jc.Dims()
	fmt.Println(viz.BoxWithTitle(
		fmt.Sprintf("Contact Jacobian: %s, %d contacts, %d rows", sc.Mechanism.Name, len(sc.Contacts), rows),
		viz.RenderMatrix(jc, nil, velocityLabels(sc.Mechanism), precision)))
	return nil
}

func runLinearize(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	sc, err := cfg.Resolve(models.NewRegistry())
	if err != nil {
		return err
	}
	logger := newLogger()
	m := sc.Mechanism

	jc, err := contact.Jacobian(sc.State, sc.Contacts, contact.WithLogger(logger))
	if err != nil {
		return err
	}
	input := sc.Input
	if input == nil {
		if input, err = contact.GravityCompensation(sc.State); err != nil {
			return err
		}
	}
	lin, err := contact.Linearize(sc.State, input, jc)
	if err != nil {
		return err
	}
	fmt.Println(viz.BoxWithTitle("A", viz.RenderMatrix(lin.A, stateLabels(m), stateLabels(m), precision)))
	fmt.Println(viz.BoxWithTitle("B", viz.RenderMatrix(lin.B, stateLabels(m), inputLabels(m), precision)))

	ls, err := linearize.New(sc.State, linearize.WithLogger(logger))
	if err != nil {
		return err
	}
	f, what := sweepFunctional(sc.Contacts)
	points, err := linearize.Sweep(ls, f, cfg.Sweep.Coordinate, cfg.Sweep.Span, cfg.Sweep.Steps)
	if err != nil {
		return err
	}
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Error
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s linearization error, q[%d] in [%.2f, %.2f]",
			what, cfg.Sweep.Coordinate, -cfg.Sweep.Span, cfg.Sweep.Span)),
	)
	fmt.Println(graph)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if len(qRange) != 2 || len(rRange) != 2 {
		return fmt.Errorf("ranges take two values: lo,hi")
	}
	if samples < 1 {
		return fmt.Errorf("samples must be positive, got %d", samples)
	}

	g := optim.NewGridSearch(
		[]string{optim.ParamQ, optim.ParamR},
		[][]float64{
			optim.LogSpace(qRange[0], qRange[1], samples),
			optim.LogSpace(rRange[0], rRange[1], samples),
		},
	).WithWorkers(workers)
	obj := optim.WeightObjective(cfg, models.NewRegistry(), maxGain, newLogger())

	start := time.Now()
	points, err := g.Evaluate(cmd.Context(), obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Q SCALE\tR SCALE\tABSCISSA")
	best := -1
	for i, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%.4g\t%.4g\t%s\n", p.Params[optim.ParamQ], p.Params[optim.ParamR], viz.Subtle.Render(p.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.6f\n", p.Params[optim.ParamQ], p.Params[optim.ParamR], p.Value)
		if best < 0 || p.Value < points[best].Value {
			best = i
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best < 0 {
		return optim.ErrNoFeasible
	}

	fmt.Println(viz.Separator(60))
	b := points[best]
	fmt.Println(viz.Metric("best", fmt.Sprintf("q x%.4g, r x%.4g", b.Params[optim.ParamQ], b.Params[optim.ParamR])))
	fmt.Println(viz.Metric("spectral abscissa", fmt.Sprintf("%.6f", b.Value)), " ", viz.Status(b.Value < 0))
	fmt.Println(viz.Metric("search time", time.Since(start).String()))
	return nil
}

// sweepFunctional picks the first contact point position, or the bias force
// without contacts.
func sweepFunctional(contacts []contact.Contact) (linearize.Functional, string) {
	if len(contacts) > 0 {
		return linearize.PositionFunctional(contacts[0].Point), "contact position"
	}
	return linearize.BiasFunctional, "bias force"
}

func listMechanisms(cmd *cobra.Command, args []string) error {
	reg := models.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNQ\tNV\tNA\tJOINTS")
	for _, name := range reg.ListMechanisms() {
		m, err := reg.GetMechanism(name)
		if err != nil {
			return err
		}
		joints := make([]string, len(m.Joints))
		for i, j := range m.Joints {
			joints[i] = fmt.Sprintf("%s(%s)", j.Name, j.Kind)
			if !j.Motorized() {
				joints[i] += "*"
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", name, m.Dims.NQ, m.Dims.NV, m.Dims.NA, strings.Join(joints, " "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(viz.Subtle.Render("* unmotorized"))
	return nil
}

func listReports(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	reports, err := st.List()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no reports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPRESET\tTIME\tCONTACTS\tGAIN\tABSCISSA\tSTABLE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%dx%d\t%.4f\t%t\n",
			r.ID,
			r.Model,
			r.Preset,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Contacts,
			r.GainRows, r.GainCols,
			r.Abscissa,
			r.Stable,
		)
	}
	return w.Flush()
}

func showReport(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	r, err := st.Load(args[0])
	if err != nil {
		return err
	}
	k, err := st.LoadGain(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s", r.Model, r.ID)))
	fmt.Println(viz.Subtle.Render(r.Timestamp.Format(time.RFC3339)))
	if m, err := models.NewRegistry().GetMechanism(r.Model); err == nil {
		fmt.Println(viz.BoxWithTitle("Gain K", viz.RenderMatrix(k, inputLabels(m), stateLabels(m), precision)))
	} else {
		fmt.Println(viz.BoxWithTitle("Gain K", viz.RenderMatrix(k, nil, nil, precision)))
	}
	printReport(r, 0)
	return nil
}

func printReport(r *storage.Report, elapsed time.Duration) {
	fmt.Println(viz.Separator(60))
	fmt.Println(viz.Metric("configuration", formatVector(r.Configuration)))
	fmt.Println(viz.Metric("input", formatVector(r.Input)))
	fmt.Println(viz.Metric("contacts", fmt.Sprintf("%d (%d constraint rows)", r.Contacts, r.ConstraintRows)))
	fmt.Println(viz.Metric("reduced states", fmt.Sprintf("%d", r.ReducedStates)))
	fmt.Println(viz.Metric("riccati residual", fmt.Sprintf("%.3e", r.Residual)))
	fmt.Println(viz.Metric("spectral abscissa", fmt.Sprintf("%.6f", r.Abscissa)), " ", viz.Status(r.Stable))
	if elapsed > 0 {
		fmt.Println(viz.Metric("synthesis time", elapsed.String()))
	}
	eigs := make([]string, len(r.Eigenvalues))
	for i, e := range r.Eigenvalues {
		eigs[i] = fmt.Sprintf("%.4f%+.4fi", e.Re, e.Im)
	}
	fmt.Println(viz.Metric("closed-loop eigenvalues", strings.Join(eigs, ", ")))
}

func serve(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	srv, err := server.New(models.NewRegistry(), server.WithStore(st), server.WithLogger(logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func stateLabels(m *multibody.Mechanism) []string {
	labels := make([]string, 0, 2*m.Dims.NV)
	for i := 0; i < m.Dims.NQ; i++ {
		labels = append(labels, fmt.Sprintf("q%d", i))
	}
	for i := 0; i < m.Dims.NV; i++ {
		labels = append(labels, fmt.Sprintf("v%d", i))
	}
	return labels
}

func velocityLabels(m *multibody.Mechanism) []string {
	return stateLabels(m)[m.Dims.NQ:]
}

// inputLabels names the generalized force of each velocity coordinate by
// the joint that drives it.
func inputLabels(m *multibody.Mechanism) []string {
	labels := make([]string, m.Dims.NV)
	for i := range labels {
		labels[i] = fmt.Sprintf("u%d", i)
	}
	for _, j := range m.Joints {
		labels[j.Index] = j.Name
	}
	return labels
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = viz.FormatValue(v, precision)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
