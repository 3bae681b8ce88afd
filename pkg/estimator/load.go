package estimator

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
)

type header struct {
	Kind Kind `json:"kind"`
}

type linearFile struct {
	Kind Kind `json:"kind"`
	LinearRegression
}

type logisticFile struct {
	Kind Kind `json:"kind"`
	LogisticRegression
}

// Load reads an estimator from a .json, .yaml or .yml file
func Load(path string) (any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read estimator file").
			WithDetail("path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		est, err := ParseYAML(data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid estimator file").WithDetail("path", path)
		}
		return est, nil
	case ".json":
		est, err := ParseJSON(data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid estimator file").WithDetail("path", path)
		}
		return est, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "cannot infer estimator format from %q", path).
			WithDetail("path", path)
	}
}

// ParseYAML decodes an estimator document in YAML
func ParseYAML(data []byte) (any, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML estimator")
	}
	// one decoding path: YAML maps re-encode as JSON objects
	asJSON, err := jsonpool.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "estimator YAML is not a plain document")
	}
	return ParseJSON(asJSON)
}

// ParseJSON decodes an estimator document in JSON
func ParseJSON(data []byte) (any, error) {
	var h header
	if err := jsonpool.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse estimator")
	}

	switch h.Kind {
	case KindLinearRegression:
		var f linearFile
		if err := jsonpool.UnmarshalStrict(data, &f); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse linear regression")
		}
		return &f.LinearRegression, nil
	case KindLogisticRegression:
		var f logisticFile
		if err := jsonpool.UnmarshalStrict(data, &f); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse logistic regression")
		}
		return &f.LogisticRegression, nil
	case "":
		return nil, errors.New(errors.ErrorTypeConfig, "estimator kind is required")
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown estimator kind %q", h.Kind).
			WithDetail("kind", string(h.Kind))
	}
}
