package config

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/compression"
	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
	"github.com/ajitpratap0/pmmlconv/pkg/observability"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/sink"
)

// Config is the pmmlconv configuration. Every section has defaults; a
// file only needs the keys it changes.
type Config struct {
	// PMML controls the document header
	PMML PMMLConfig `yaml:"pmml" json:"pmml" mapstructure:"pmml"`

	// Conversion controls how the dictionaries are built
	Conversion ConversionConfig `yaml:"conversion" json:"conversion" mapstructure:"conversion"`

	// Output selects the destination and its compression
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Observability settings for logs, metrics and traces
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// PMMLConfig holds the document header content
type PMMLConfig struct {
	// Version must be 4.2
	Version            string `yaml:"version" json:"version" mapstructure:"version"`
	Copyright          string `yaml:"copyright" json:"copyright" mapstructure:"copyright"`
	Description        string `yaml:"description" json:"description" mapstructure:"description"`
	ApplicationName    string `yaml:"application_name" json:"application_name" mapstructure:"application_name"`
	ApplicationVersion string `yaml:"application_version" json:"application_version" mapstructure:"application_version"`
}

// ConversionConfig mirrors converter.Options
type ConversionConfig struct {
	// Mode is classification or regression; empty lets the estimator decide
	Mode                string `yaml:"mode" json:"mode" mapstructure:"mode"`
	DuplicateDataFields bool   `yaml:"duplicate_data_fields" json:"duplicate_data_fields" mapstructure:"duplicate_data_fields"`
	NumericNamespace    string `yaml:"numeric_namespace" json:"numeric_namespace" mapstructure:"numeric_namespace"`
}

// OutputConfig selects where documents go
type OutputConfig struct {
	// URI is "-", a path, s3://bucket/key or gs://bucket/object
	URI              string `yaml:"uri" json:"uri" mapstructure:"uri"`
	Compression      string `yaml:"compression" json:"compression" mapstructure:"compression"`
	CompressionLevel string `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`

	// S3
	Region   string `yaml:"region" json:"region" mapstructure:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`

	// GCS
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
}

// ObservabilityConfig contains logging, metrics and tracing settings
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is json or console
	LogEncoding   string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	EnableMetrics bool   `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	// MetricsAddr is where /metrics is served while a run is active
	MetricsAddr   string `yaml:"metrics_addr" json:"metrics_addr" mapstructure:"metrics_addr"`
	EnableTracing bool   `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
}

// NewConfig returns a configuration with defaults
func NewConfig() *Config {
	return &Config{
		PMML: PMMLConfig{
			Version:         pmml.Version,
			ApplicationName: "pmmlconv",
		},
		Conversion: ConversionConfig{
			NumericNamespace: converter.DefaultNumericNamespace,
		},
		Output: OutputConfig{
			URI:              "-",
			Compression:      string(compression.None),
			CompressionLevel: compression.Default.String(),
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "console",
			MetricsAddr:       "127.0.0.1:9464",
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks the configuration for values pmmlconv cannot honor
func (c *Config) Validate() error {
	if c.PMML.Version != pmml.Version {
		return errors.Newf(errors.ErrorTypeConfig, "pmml.version %q is not supported; only %s is emitted", c.PMML.Version, pmml.Version).
			WithDetail("version", c.PMML.Version)
	}
	if c.Conversion.Mode != "" {
		if _, err := converter.ParseMode(c.Conversion.Mode); err != nil {
			return err
		}
	}
	if _, err := compression.ParseAlgorithm(c.Output.Compression); err != nil {
		return err
	}
	if _, err := compression.ParseLevel(c.Output.CompressionLevel); err != nil {
		return err
	}
	if _, err := sink.ParseURI(c.Output.URI); err != nil {
		return err
	}
	switch c.Observability.LogEncoding {
	case "", "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "observability.log_encoding must be json or console, got %q", c.Observability.LogEncoding)
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "observability.tracing_sample_rate must be within [0, 1], got %g", r)
	}
	return nil
}

// ConverterOptions translates the conversion and header sections
func (c *Config) ConverterOptions(l *zap.Logger) (converter.Options, error) {
	opts := converter.Options{
		DuplicateDataFields: c.Conversion.DuplicateDataFields,
		NumericNamespace:    c.Conversion.NumericNamespace,
		Header: converter.StaticHeader(converter.HeaderInfo{
			Copyright:          c.PMML.Copyright,
			Description:        c.PMML.Description,
			ApplicationName:    c.PMML.ApplicationName,
			ApplicationVersion: c.PMML.ApplicationVersion,
		}),
		Logger: l,
	}
	if c.Conversion.Mode != "" {
		mode, err := converter.ParseMode(c.Conversion.Mode)
		if err != nil {
			return converter.Options{}, err
		}
		opts.Mode = mode
	}
	return opts, nil
}

// SinkOptions translates the output section
func (c *Config) SinkOptions(l *zap.Logger) (sink.Options, error) {
	algo, err := compression.ParseAlgorithm(c.Output.Compression)
	if err != nil {
		return sink.Options{}, err
	}
	level, err := compression.ParseLevel(c.Output.CompressionLevel)
	if err != nil {
		return sink.Options{}, err
	}
	return sink.Options{
		Compression:     algo,
		Level:           level,
		Region:          c.Output.Region,
		Endpoint:        c.Output.Endpoint,
		CredentialsFile: c.Output.CredentialsFile,
		Logger:          l,
	}, nil
}

// LoggerConfig translates the observability section for logger.Init
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:    c.Observability.LogLevel,
		Encoding: c.Observability.LogEncoding,
	}
}

// TracingConfig translates the observability section for observability.Init
func (c *Config) TracingConfig(version string) observability.TracingConfig {
	tc := observability.DefaultTracingConfig()
	tc.ServiceVersion = version
	tc.SamplingRate = c.Observability.TracingSampleRate
	return tc
}
