package schema

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
)

// File is the on-disk form of a declared schema
//
//	inputs:
//	  - name: color
//	    values: [red, green, blue]
//	  - name: age
//	    type: double
//	    invalid_value_treatment: asMissing
//	outputs:
//	  - name: label
type File struct {
	Inputs  []FieldSpec `yaml:"inputs" json:"inputs"`
	Outputs []FieldSpec `yaml:"outputs" json:"outputs"`
}

// FieldSpec declares one feature. A field with values is categorical;
// Type is then its data type (default string). Otherwise Type is the
// numeric data type (default double) and OpType defaults to continuous.
type FieldSpec struct {
	Name                  string   `yaml:"name" json:"name"`
	Type                  string   `yaml:"type,omitempty" json:"type,omitempty"`
	OpType                string   `yaml:"optype,omitempty" json:"optype,omitempty"`
	Values                []string `yaml:"values,omitempty" json:"values,omitempty"`
	InvalidValueTreatment string   `yaml:"invalid_value_treatment,omitempty" json:"invalid_value_treatment,omitempty"`
	Namespace             string   `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

// Format is a schema file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatAvro Format = "avro"
)

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".avsc", ".avro":
		return FormatAvro, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "cannot infer schema format from %q", path).
			WithDetail("path", path)
	}
}

// LoadFile reads a declared schema from path. For Avro schemas, targets
// names the record fields that are model outputs.
func LoadFile(path string, targets ...string) (*Context, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read schema file").
			WithDetail("path", path)
	}

	ctx, err := Parse(data, format, targets...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid schema file").
			WithDetail("path", path)
	}
	return ctx, nil
}

// Parse decodes a declared schema in the given format
func Parse(data []byte, format Format, targets ...string) (*Context, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML schema")
		}
	case FormatJSON:
		if err := jsonpool.UnmarshalStrict(data, &f); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse JSON schema")
		}
	case FormatAvro:
		return FromAvro(data, targets...)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown schema format %q", format)
	}
	return f.Context()
}

// Context converts the file into a validated Context
func (f *File) Context() (*Context, error) {
	inputs, err := buildFeatures(f.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := buildFeatures(f.Outputs)
	if err != nil {
		return nil, err
	}
	return NewContext(inputs, outputs)
}

// Spec converts f into its file form
func Spec(f feature.Feature) FieldSpec {
	spec := FieldSpec{
		Name:      f.Name(),
		Namespace: f.Namespace(),
	}
	if f.InvalidValueTreatment() != feature.ReturnInvalid {
		spec.InvalidValueTreatment = string(f.InvalidValueTreatment())
	}

	if c, ok := f.(*feature.CategoricalFeature); ok {
		spec.Values = c.Values()
		if c.DataType() != feature.String {
			spec.Type = string(c.DataType())
		}
		return spec
	}

	spec.Type = string(f.DataType())
	if f.OpType() != feature.Continuous {
		spec.OpType = string(f.OpType())
	}
	return spec
}

// ToFile converts the declared schemas of c into file form
func ToFile(c *Context) *File {
	f := &File{}
	for _, in := range c.Input() {
		f.Inputs = append(f.Inputs, Spec(in))
	}
	for _, out := range c.Output() {
		f.Outputs = append(f.Outputs, Spec(out))
	}
	return f
}

// MarshalYAML encodes c's declared schemas as a YAML schema file
func MarshalYAML(c *Context) ([]byte, error) {
	data, err := yaml.Marshal(ToFile(c))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode schema")
	}
	return data, nil
}

func buildFeatures(specs []FieldSpec) ([]feature.Feature, error) {
	features := make([]feature.Feature, 0, len(specs))
	for _, spec := range specs {
		f, err := spec.Feature()
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

// Feature builds the feature described by spec
func (spec FieldSpec) Feature() (feature.Feature, error) {
	treatment, err := feature.ParseInvalidValueTreatment(spec.InvalidValueTreatment)
	if err != nil {
		return nil, withField(err, spec.Name)
	}

	if len(spec.Values) > 0 || spec.Type == string(feature.Categorical) || spec.OpType == string(feature.Categorical) {
		c := feature.NewCategorical(spec.Name, spec.Values).WithInvalidValueTreatment(treatment)
		if spec.Type != "" && spec.Type != string(feature.Categorical) {
			dt, err := feature.ParseDataType(spec.Type)
			if err != nil {
				return nil, withField(err, spec.Name)
			}
			c = c.WithDataType(dt)
		}
		if spec.Namespace != "" {
			c = c.WithNamespace(spec.Namespace)
		}
		return c, nil
	}

	dt := feature.Double
	if spec.Type != "" {
		if dt, err = feature.ParseDataType(spec.Type); err != nil {
			return nil, withField(err, spec.Name)
		}
	}
	ot := feature.Continuous
	if spec.OpType != "" {
		if ot, err = feature.ParseOpType(spec.OpType); err != nil {
			return nil, withField(err, spec.Name)
		}
	}

	n := feature.NewNumeric(spec.Name, dt, ot).WithInvalidValueTreatment(treatment)
	if spec.Namespace != "" {
		n = n.WithNamespace(spec.Namespace)
	}
	return n, nil
}

func withField(err error, name string) error {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.WithDetail("feature", name)
	}
	return err
}
