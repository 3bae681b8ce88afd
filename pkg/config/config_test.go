package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pmmlconv/pkg/compression"
	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/testutil"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "classification", modify: func(c *Config) { c.Conversion.Mode = "Classification" }},
		{name: "pmml 4.4", modify: func(c *Config) { c.PMML.Version = "4.4" }, want: "not supported"},
		{name: "unknown mode", modify: func(c *Config) { c.Conversion.Mode = "ranking" }, want: "unknown conversion mode"},
		{name: "unknown compression", modify: func(c *Config) { c.Output.Compression = "brotli" }, want: "unsupported compression"},
		{name: "unknown level", modify: func(c *Config) { c.Output.CompressionLevel = "max" }, want: "unknown compression level"},
		{name: "bucket without key", modify: func(c *Config) { c.Output.URI = "gs://models" }, want: "bucket and an object key"},
		{name: "log encoding", modify: func(c *Config) { c.Observability.LogEncoding = "xml" }, want: "log_encoding"},
		{name: "sample rate", modify: func(c *Config) { c.Observability.TracingSampleRate = 1.5 }, want: "tracing_sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("MODEL_BUCKET", "risk-models")
	t.Setenv("PMMLCONV_OBSERVABILITY_LOG_LEVEL", "debug")

	path := testutil.WriteFile(t, t.TempDir(), "pmmlconv.yaml", []byte(`
pmml:
  copyright: Example Corp
conversion:
  mode: regression
  duplicate_data_fields: true
output:
  uri: s3://${MODEL_BUCKET}/credit.pmml
  compression: zstd
`))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "4.2", cfg.PMML.Version, "default kept")
	assert.Equal(t, "Example Corp", cfg.PMML.Copyright)
	assert.Equal(t, "pmmlconv", cfg.PMML.ApplicationName)
	assert.Equal(t, "regression", cfg.Conversion.Mode)
	assert.True(t, cfg.Conversion.DuplicateDataFields)
	assert.Equal(t, "numeric", cfg.Conversion.NumericNamespace)
	assert.Equal(t, "s3://risk-models/credit.pmml", cfg.Output.URI)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.Equal(t, "debug", cfg.Observability.LogLevel, "environment overrides")
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("PMMLCONV_CONVERSION_DUPLICATE_DATA_FIELDS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Conversion.DuplicateDataFields)
	assert.Equal(t, "-", cfg.Output.URI)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	bad := testutil.WriteFile(t, t.TempDir(), "bad.yaml", []byte("pmml: [unclosed"))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	invalid := testutil.WriteFile(t, t.TempDir(), "invalid.yaml", []byte("pmml:\n  version: \"4.3\"\n"))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4.3")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.PMML.Description = "credit risk"
	cfg.Output.URI = "out/model.pmml.gz"
	cfg.Output.Compression = "gzip"

	path := filepath.Join(t.TempDir(), "conf", "pmmlconv.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "alpha")
	assert.Equal(t, "x alpha y", substituteEnvVars("x ${A} y"))
	assert.Equal(t, "price $5 ", substituteEnvVars("price $5 ${UNSET_PMMLCONV_VAR}"))
	assert.Equal(t, "open ${A", substituteEnvVars("open ${A"))
}

func TestConverterOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Conversion.Mode = "classification"
	cfg.Conversion.DuplicateDataFields = true
	cfg.PMML.Copyright = "Example Corp"

	opts, err := cfg.ConverterOptions(testutil.TestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, converter.Classification, opts.Mode)
	assert.True(t, opts.DuplicateDataFields)
	require.NotNil(t, opts.Header)
	h := opts.Header()
	assert.Equal(t, "Example Corp", h.Copyright)
	assert.Equal(t, "pmmlconv", h.Application.Name)

	cfg.Conversion.Mode = ""
	opts, err = cfg.ConverterOptions(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.Mode)
}

func TestSinkOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Output.Compression = "lz4"
	cfg.Output.Region = "eu-west-1"

	opts, err := cfg.SinkOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, compression.LZ4, opts.Compression)
	assert.Equal(t, compression.Default, opts.Level)
	assert.Equal(t, "eu-west-1", opts.Region)
}

func TestObservabilityTranslation(t *testing.T) {
	cfg := NewConfig()
	cfg.Observability.LogLevel = "warn"
	cfg.Observability.TracingSampleRate = 0.25

	assert.Equal(t, "warn", cfg.LoggerConfig().Level)
	tc := cfg.TracingConfig("1.2.3")
	assert.Equal(t, "1.2.3", tc.ServiceVersion)
	assert.Equal(t, 0.25, tc.SamplingRate)
	assert.Equal(t, "pmmlconv", tc.ServiceName)
}
