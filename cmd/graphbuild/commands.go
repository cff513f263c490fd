package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-graphbuilder/pkg/builder"
	"github.com/dd0wney/cluso-graphbuilder/pkg/codec"
	"github.com/dd0wney/cluso-graphbuilder/pkg/config"
	"github.com/dd0wney/cluso-graphbuilder/pkg/constraints"
	"github.com/dd0wney/cluso-graphbuilder/pkg/logging"
	"github.com/dd0wney/cluso-graphbuilder/pkg/manifest"
	"github.com/dd0wney/cluso-graphbuilder/pkg/metrics"
	"github.com/dd0wney/cluso-graphbuilder/pkg/properties"
)

// errConstraintsFailed is returned when a batch has Error severity violations
var errConstraintsFailed = errors.New("constraint check failed")

// session is what every subcommand needs: parsed config, logger, metrics and a
// configured Builder
type session struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	builder *builder.Builder
	stdout  io.Writer
	stderr  io.Writer
}

type commonFlags struct {
	configPath   string
	manifestPath string
	showMetrics  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", os.Getenv("GRAPHBUILD_CONFIG"), "YAML configuration file")
	fs.StringVar(&c.manifestPath, "manifest", "", "manifest to build")
	fs.BoolVar(&c.showMetrics, "metrics", false, "print a metrics summary to stderr when done")
}

func newSession(configPath string, stdout, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(stderr, cfg.LogLevel()).With(logging.Component("graphbuild"))
	reg := metrics.NewRegistry()

	return &session{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		builder: builder.New(
			builder.WithLogger(logger),
			builder.WithMetrics(reg),
			builder.WithLimits(cfg.BuilderLimits()),
		),
		stdout: stdout,
		stderr: stderr,
	}, nil
}

func (e *session) finish(show bool) {
	if !show {
		return
	}
	if err := e.metrics.WriteSummary(e.stderr); err != nil {
		e.logger.Warn("metrics summary failed", logging.Error(err))
	}
}

// buildManifest loads and builds the manifest at path
func (e *session) buildManifest(path string) (*manifest.Batch, error) {
	if path == "" {
		return nil, errors.New("-manifest is required")
	}

	timer := logging.StartTimer(e.logger, "manifest built", logging.Path(path))

	m, err := manifest.LoadFile(path)
	if err != nil {
		timer.EndError(err)
		e.metrics.RecordBatch(0, 0, err)
		return nil, err
	}

	batch, err := m.Build(e.builder)
	if err != nil {
		timer.EndError(err)
		e.metrics.RecordBatch(0, 0, err)
		return nil, err
	}

	timer.End(logging.BatchID(batch.ID.String()), logging.Count(len(batch.Nodes())+len(batch.Relationships())))
	e.metrics.RecordBatch(len(batch.Nodes()), len(batch.Relationships()), nil)
	return batch, nil
}

// checkConstraints runs the configured constraints and reports violations on
// stderr
func (e *session) checkConstraints(batch *manifest.Batch) (*constraints.ValidationResult, error) {
	v, err := e.cfg.BuildConstraints()
	if err != nil {
		return nil, err
	}

	result, err := v.Validate(batch)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordViolations(result.CountBySeverity())

	for _, violation := range result.Violations {
		fmt.Fprintln(e.stderr, violation)
	}
	e.logger.Info("constraints checked",
		logging.BatchID(batch.ID.String()),
		logging.Int("constraints", len(v.Constraints())),
		logging.Int("violations", len(result.Violations)),
		logging.Bool("valid", result.Valid),
	)
	return result, nil
}

func runBuild(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	out := fs.String("out", "-", "output file, - for stdout")
	compress := fs.Bool("compress", false, "wrap the export in snappy framing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := newSession(common.configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer e.finish(common.showMetrics)

	batch, err := e.buildManifest(common.manifestPath)
	if err != nil {
		return err
	}

	result, err := e.checkConstraints(batch)
	if err != nil {
		return err
	}
	if !result.Valid {
		return errConstraintsFailed
	}

	opts := codec.Options{Compress: *compress || e.cfg.Runtime.Compress}
	if *out == "-" {
		return codec.Encode(stdout, batch, opts)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := codec.Encode(f, batch, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	e.logger.Info("batch exported",
		logging.BatchID(batch.ID.String()),
		logging.Path(*out),
		logging.Bool("compressed", opts.Compress),
	)
	return nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := newSession(common.configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer e.finish(common.showMetrics)

	batch, err := e.buildManifest(common.manifestPath)
	if err != nil {
		return err
	}

	result, err := e.checkConstraints(batch)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "batch %s: %d nodes, %d relationships, %d errors, %d warnings\n",
		batch.ID, len(batch.Nodes()), len(batch.Relationships()),
		len(result.BySeverity(constraints.Error)), len(result.BySeverity(constraints.Warning)))

	if !result.Valid {
		return errConstraintsFailed
	}
	return nil
}

// classified is one line of classify output
type classified struct {
	Entity  string                    `json:"entity"`
	Key     string                    `json:"key,omitempty"`
	Index   *int                      `json:"index,omitempty"`
	Tags    []string                  `json:"tags"`
	Classes properties.Classification `json:"classes"`
}

func runClassify(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := newSession(common.configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer e.finish(common.showMetrics)

	batch, err := e.buildManifest(common.manifestPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	keys := batch.Keys()
	for i, n := range batch.Nodes() {
		if err := enc.Encode(classified{
			Entity:  metrics.EntityNode,
			Key:     keys[i],
			Tags:    n.Labels,
			Classes: properties.ClassifyAll(n.Properties),
		}); err != nil {
			return err
		}
	}
	for i, r := range batch.Relationships() {
		idx := i
		if err := enc.Encode(classified{
			Entity:  metrics.EntityRelationship,
			Index:   &idx,
			Tags:    r.Types,
			Classes: properties.ClassifyAll(r.Properties),
		}); err != nil {
			return err
		}
	}
	return nil
}

func runInspect(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("GRAPHBUILD_CONFIG"), "YAML configuration file")
	in := fs.String("in", "-", "exported batch, - for stdin")
	showMetrics := fs.Bool("metrics", false, "print a metrics summary to stderr when done")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := newSession(*configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer e.finish(*showMetrics)

	r := stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		r = f
	}

	batch, err := codec.Decode(r, e.builder)
	if err != nil {
		e.metrics.RecordBatch(0, 0, err)
		return err
	}
	e.metrics.RecordBatch(len(batch.Nodes()), len(batch.Relationships()), nil)

	if err := batch.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "batch %s: %d nodes, %d relationships\n", batch.ID, len(batch.Nodes()), len(batch.Relationships()))
	keys := batch.Keys()
	for i, n := range batch.Nodes() {
		fmt.Fprintf(stdout, "  %s %s\n", keys[i], n)
	}
	for _, r := range batch.Relationships() {
		fmt.Fprintf(stdout, "  -> %s %s\n", batch.Key(r.Endpoint), r)
	}
	return nil
}
