package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pmmlconv/pkg/compression"
	"github.com/ajitpratap0/pmmlconv/pkg/config"
	"github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/regression"
	"github.com/ajitpratap0/pmmlconv/pkg/testutil"
)

const (
	linearJSON   = `{"kind": "linear_regression", "coefficients": [0.3, -1.1], "intercept": 2.5}`
	logisticJSON = `{"kind": "logistic_regression", "classes": ["no", "yes"], "coefficients": [[0.8, 0.1]], "intercepts": [-0.5]}`
	schemaYAML   = `
inputs:
  - name: color
    values: [red, green, blue]
  - name: age
outputs:
  - name: label
`
	samplesNDJSON = `{"color": "red", "age": 31, "label": 1.5}
{"color": "blue", "age": 45, "label": 0.2}
`
)

type fixture struct {
	dir      string
	pipeline *Pipeline
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.NewConfig()
	return newFixtureWith(t, cfg)
}

func newFixtureWith(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	log := testutil.TestLogger(t)

	opts, err := cfg.ConverterOptions(log)
	require.NoError(t, err)
	reg := registry.NewRegistry(log)
	require.NoError(t, regression.Register(reg, opts))
	reg.Seal()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "linear.json", []byte(linearJSON))
	testutil.WriteFile(t, dir, "logistic.json", []byte(logisticJSON))
	testutil.WriteFile(t, dir, "schema.yaml", []byte(schemaYAML))
	testutil.WriteFile(t, dir, "samples.ndjson", []byte(samplesNDJSON))

	return &fixture{dir: dir, pipeline: New(cfg, reg, log), cfg: cfg}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func TestRunWithSchemaFile(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Estimator: f.path("linear.json"),
		Schema:    f.path("schema.yaml"),
		Output:    f.path("out/linear.pmml"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ConversionID)
	assert.Equal(t, "linear_regression", res.Estimator)
	assert.Equal(t, "regression", string(res.Mode))
	assert.Equal(t, f.path("out/linear.pmml"), res.Destination)

	doc, err := os.ReadFile(f.path("out/linear.pmml"))
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, int64(len(doc)))
	assert.Contains(t, string(doc), `<DerivedField name="numeric.color"`)
	assert.Contains(t, string(doc), `<NumericPredictor name="age" coefficient="-1.1">`)
}

func TestRunInfersSchemaFromSamples(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Name:      "inferred",
		Estimator: f.path("linear.json"),
		Samples:   f.path("samples.ndjson"),
		Targets:   []string{"label"},
		Output:    f.path("inferred.pmml"),
	})
	require.NoError(t, err)
	assert.Equal(t, "inferred", res.Job)

	doc, err := os.ReadFile(f.path("inferred.pmml"))
	require.NoError(t, err)
	// inferred inputs are ordered by name: age, color
	assert.Less(t, strings.Index(string(doc), `name="age"`), strings.Index(string(doc), `name="color"`))
}

func TestRunCompressedOutput(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Compression = "gzip"
	f := newFixtureWith(t, cfg)

	_, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Estimator: f.path("logistic.json"),
		Schema:    f.path("schema.yaml"),
		Output:    f.path("logistic.pmml.gz"),
	})
	require.NoError(t, err)

	file, err := os.Open(f.path("logistic.pmml.gz"))
	require.NoError(t, err)
	defer file.Close()
	r, err := compression.NewReader(file, compression.Gzip)
	require.NoError(t, err)
	data := new(strings.Builder)
	_, err = io.Copy(data, r)
	require.NoError(t, err)
	assert.Contains(t, data.String(), `normalizationMethod="logit"`)
}

func TestRunErrors(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.dir, "unknown.json", []byte(`{"kind": "linear_regression", "coefficients": [1]}`))

	tests := []struct {
		name    string
		job     Job
		errType errors.ErrorType
	}{
		{
			name:    "missing estimator",
			job:     Job{Estimator: f.path("nope.json"), Schema: f.path("schema.yaml"), Output: f.path("x.pmml")},
			errType: errors.ErrorTypeFile,
		},
		{
			name:    "no schema",
			job:     Job{Estimator: f.path("linear.json"), Output: f.path("x.pmml")},
			errType: errors.ErrorTypeConfig,
		},
		{
			name:    "coefficient mismatch",
			job:     Job{Estimator: f.path("unknown.json"), Schema: f.path("schema.yaml"), Output: f.path("x.pmml")},
			errType: errors.ErrorTypeValidation,
		},
		{
			name:    "bad destination",
			job:     Job{Estimator: f.path("linear.json"), Schema: f.path("schema.yaml"), Output: "ftp://host/x.pmml"},
			errType: errors.ErrorTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.pipeline.Run(testutil.TestContext(t), tt.job)
			require.Error(t, err)
			assert.Equal(t, err, res.Err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestRunFailureKeepsExistingOutput(t *testing.T) {
	f := newFixture(t)
	// three coefficients for a two-input schema
	testutil.WriteFile(t, f.dir, "mismatch.json", []byte(`{"kind": "linear_regression", "coefficients": [1, 2, 3], "intercept": 0}`))
	previous := testutil.WriteFile(t, f.dir, "model.pmml", []byte("<PMML>previous</PMML>\n"))

	_, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Estimator: f.path("mismatch.json"),
		Schema:    f.path("schema.yaml"),
		Output:    previous,
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "got %v", err)

	doc, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "<PMML>previous</PMML>\n", string(doc))

	leftovers, err := filepath.Glob(filepath.Join(f.dir, ".model.pmml.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRunReplacesExistingOutput(t *testing.T) {
	f := newFixture(t)
	previous := testutil.WriteFile(t, f.dir, "model.pmml", []byte("<PMML>previous</PMML>\n"))

	res, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Estimator: f.path("linear.json"),
		Schema:    f.path("schema.yaml"),
		Output:    previous,
	})
	require.NoError(t, err)

	doc, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, int64(len(doc)))
	assert.Contains(t, string(doc), "<RegressionModel")
}

func TestRunModeMismatch(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Conversion.Mode = "classification"
	f := newFixtureWith(t, cfg)

	_, err := f.pipeline.Run(testutil.TestContext(t), Job{
		Estimator: f.path("linear.json"),
		Schema:    f.path("schema.yaml"),
		Output:    f.path("x.pmml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linear_regression performs regression, but classification was configured")
}

func TestRunAll(t *testing.T) {
	f := newFixture(t)
	jobs := []Job{
		{Name: "a", Estimator: f.path("linear.json"), Schema: f.path("schema.yaml"), Output: f.path("a.pmml")},
		{Name: "b", Estimator: f.path("nope.json"), Schema: f.path("schema.yaml"), Output: f.path("b.pmml")},
		{Name: "c", Estimator: f.path("logistic.json"), Schema: f.path("schema.yaml"), Output: f.path("c.pmml")},
	}

	results := f.pipeline.RunAll(testutil.TestContext(t), jobs, 2)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Job)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "classification", string(results[2].Mode))

	assert.FileExists(t, f.path("a.pmml"))
	assert.FileExists(t, f.path("c.pmml"))
}

func TestRunAllCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "a", Estimator: f.path("linear.json")}}
	results := f.pipeline.RunAll(ctx, jobs, 1)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "jobs.yaml", []byte(`
workers: 3
jobs:
  - name: credit
    estimator: credit.json
    schema: credit.yaml
    output: s3://models/credit.pmml
  - estimator: churn.json
    samples: churn.ndjson.gz
    targets: [churned]
`))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Workers)
	require.Len(t, m.Jobs, 2)
	assert.Equal(t, "credit", m.Jobs[0].Name)
	assert.Equal(t, []string{"churned"}, m.Jobs[1].Targets)
	assert.Equal(t, "churn.json", m.Jobs[1].label())

	empty := testutil.WriteFile(t, dir, "empty.yaml", []byte("jobs: []\n"))
	_, err = LoadManifest(empty)
	assert.Error(t, err)

	noEstimator := testutil.WriteFile(t, dir, "bad.yaml", []byte("jobs:\n  - schema: a.yaml\n"))
	_, err = LoadManifest(noEstimator)
	assert.Error(t, err)
}

func TestLoadSamplesCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.ndjson.zst")
	file, err := os.Create(path)
	require.NoError(t, err)
	w, err := compression.NewWriter(file, compression.Zstd, compression.Default)
	require.NoError(t, err)
	_, err = w.Write([]byte(samplesNDJSON))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, file.Close())

	samples, err := LoadSamples(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "red", samples[0]["color"])
}
