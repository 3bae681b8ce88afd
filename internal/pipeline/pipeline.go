// Package pipeline runs conversion jobs: it loads an estimator and its
// declared schema, finds the registered converter, renders the document
// and writes it to a sink.
//
// # Basic Usage
//
//	p := pipeline.New(cfg, reg, logger)
//	res, err := p.Run(ctx, pipeline.Job{
//	    Estimator: "model.json",
//	    Schema:    "schema.yaml",
//	    Output:    "s3://models/credit.pmml",
//	})
//
// A schema can also be inferred from sample records (Job.Samples), which
// may be compressed.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/compression"
	"github.com/ajitpratap0/pmmlconv/pkg/config"
	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/pool"
	"github.com/ajitpratap0/pmmlconv/pkg/estimator"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
	"github.com/ajitpratap0/pmmlconv/pkg/observability"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
	"github.com/ajitpratap0/pmmlconv/pkg/sink"
)

// Job is one conversion
type Job struct {
	Name      string `yaml:"name" json:"name"`
	Estimator string `yaml:"estimator" json:"estimator"`
	// Schema is a YAML, JSON or Avro schema file
	Schema string `yaml:"schema" json:"schema"`
	// Samples is a JSON array or NDJSON file to infer the schema from
	// when Schema is empty
	Samples string   `yaml:"samples" json:"samples"`
	Targets []string `yaml:"targets" json:"targets"`
	// Output overrides output.uri from the configuration
	Output string `yaml:"output" json:"output"`
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Estimator
}

// Result reports a finished job
type Result struct {
	Job          string
	ConversionID string
	Estimator    string
	Mode         converter.Mode
	Destination  string
	Bytes        int64
	Duration     time.Duration
	Err          error
}

// Pipeline runs jobs against a sealed registry. It is safe for
// concurrent use.
type Pipeline struct {
	cfg       *config.Config
	registry  *registry.Registry
	inference *schema.InferenceEngine
	logger    *zap.Logger
}

// New creates a pipeline. A nil logger means the global one.
func New(cfg *config.Config, reg *registry.Registry, l *zap.Logger) *Pipeline {
	if l == nil {
		l = logger.Get()
	}
	l = l.With(zap.String("component", "pipeline"))
	return &Pipeline{
		cfg:       cfg,
		registry:  reg,
		inference: schema.NewInferenceEngine(l),
		logger:    l,
	}
}

// Run executes one job
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	res := &Result{Job: job.label(), ConversionID: uuid.NewString()}

	err := p.run(ctx, job, res)
	res.Duration = time.Since(start)
	res.Err = err
	return res, err
}

func (p *Pipeline) run(ctx context.Context, job Job, res *Result) error {
	est, err := estimator.Load(job.Estimator)
	if err != nil {
		return err
	}
	res.Estimator = estimator.Name(est)

	conv, err := p.registry.Create(est)
	if err != nil {
		return err
	}
	res.Mode = conv.Mode()
	if err := p.checkMode(est, conv.Mode()); err != nil {
		return err
	}

	ctx = logger.WithConversion(ctx, res.ConversionID, res.Estimator, string(res.Mode))
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	span.SetAttribute("job", res.Job)
	span.SetAttribute("estimator", res.Estimator)
	log := logger.WithContext(ctx, p.logger)

	err = p.convert(ctx, job, conv, res, log)
	span.SetAttribute("bytes", res.Bytes)
	span.Finish(err)
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		return err
	}

	log.Info("conversion completed",
		zap.String("destination", res.Destination),
		zap.Int64("bytes", res.Bytes))
	return nil
}

func (p *Pipeline) convert(ctx context.Context, job Job, conv *converter.Converter, res *Result, log *zap.Logger) error {
	tc, err := p.LoadSchema(job)
	if err != nil {
		return err
	}
	log.Debug("schema loaded",
		zap.Int("inputs", len(tc.Input())),
		zap.Int("outputs", len(tc.Output())),
		zap.Int("categorical", tc.CategoricalCount()))

	uri := job.Output
	if uri == "" {
		uri = p.cfg.Output.URI
	}
	target, err := sink.ParseURI(uri)
	if err != nil {
		return err
	}
	res.Destination = target.String()

	opts, err := p.cfg.SinkOptions(log)
	if err != nil {
		return err
	}
	// render before opening the destination so a failed conversion never
	// replaces an existing document
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	if err := conv.Render(ctx, tc, buf); err != nil {
		return err
	}

	w, err := sink.OpenTarget(ctx, target, opts)
	if err != nil {
		return err
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		_ = w.Abort(err)
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to write document").
			WithDetail("destination", res.Destination)
	}
	if err := w.Close(); err != nil {
		return err
	}
	res.Bytes = n
	return nil
}

// checkMode rejects a configured mode the converter does not perform
func (p *Pipeline) checkMode(est any, mode converter.Mode) error {
	if p.cfg.Conversion.Mode == "" {
		return nil
	}
	want, err := converter.ParseMode(p.cfg.Conversion.Mode)
	if err != nil {
		return err
	}
	if want == mode {
		return nil
	}
	info, _ := p.registry.Describe(est)
	return errors.Newf(errors.ErrorTypeConfig, "converter %s performs %s, but %s was configured", info.Name, mode, want).
		WithDetail("converter", info.Name).
		WithDetail("mode", string(want))
}

// LoadSchema reads the job's schema file, or infers one from its samples
func (p *Pipeline) LoadSchema(job Job) (*schema.Context, error) {
	switch {
	case job.Schema != "":
		return schema.LoadFile(job.Schema, job.Targets...)
	case job.Samples != "":
		samples, err := LoadSamples(job.Samples)
		if err != nil {
			return nil, err
		}
		tc, _, err := p.inference.Infer(samples, job.Targets...)
		return tc, err
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "job needs a schema file or sample records").
			WithDetail("job", job.label())
	}
}

// LoadSamples decodes a JSON array or NDJSON file of records. A
// compression suffix (.gz, .zst, ...) is decompressed transparently.
func LoadSamples(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open samples").
			WithDetail("path", path)
	}
	defer f.Close()

	r, err := compression.NewReader(f, compression.FromPath(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open samples").
			WithDetail("path", path)
	}
	defer r.Close()

	samples, err := jsonpool.DecodeRecords(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decode samples").
			WithDetail("path", path)
	}
	return samples, nil
}
