package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

// EnvPrefix prefixes environment overrides: PMMLCONV_OUTPUT_URI sets
// output.uri
const EnvPrefix = "PMMLCONV"

// Load reads a YAML configuration file on top of the defaults. ${VAR}
// references are substituted before parsing and PMMLCONV_* variables
// override file values. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file").
				WithDetail("path", path)
		}
		content := substituteEnvVars(string(data))
		if err := v.ReadConfig(bytes.NewReader([]byte(content))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config file").
				WithDetail("path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper registers every default so that AutomaticEnv can see each key
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := NewConfig()
	v.SetDefault("pmml.version", d.PMML.Version)
	v.SetDefault("pmml.copyright", d.PMML.Copyright)
	v.SetDefault("pmml.description", d.PMML.Description)
	v.SetDefault("pmml.application_name", d.PMML.ApplicationName)
	v.SetDefault("pmml.application_version", d.PMML.ApplicationVersion)

	v.SetDefault("conversion.mode", d.Conversion.Mode)
	v.SetDefault("conversion.duplicate_data_fields", d.Conversion.DuplicateDataFields)
	v.SetDefault("conversion.numeric_namespace", d.Conversion.NumericNamespace)

	v.SetDefault("output.uri", d.Output.URI)
	v.SetDefault("output.compression", d.Output.Compression)
	v.SetDefault("output.compression_level", d.Output.CompressionLevel)
	v.SetDefault("output.region", d.Output.Region)
	v.SetDefault("output.endpoint", d.Output.Endpoint)
	v.SetDefault("output.credentials_file", d.Output.CredentialsFile)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.log_encoding", d.Observability.LogEncoding)
	v.SetDefault("observability.enable_metrics", d.Observability.EnableMetrics)
	v.SetDefault("observability.metrics_addr", d.Observability.MetricsAddr)
	v.SetDefault("observability.enable_tracing", d.Observability.EnableTracing)
	v.SetDefault("observability.tracing_sample_rate", d.Observability.TracingSampleRate)
	return v
}

// Save writes cfg as YAML, creating parent directories
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to create config directory").
				WithDetail("path", path)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", path)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// A bare $ is left alone.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.IndexByte(content[start:], '}')
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
