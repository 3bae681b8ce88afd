package converter

import (
	"strconv"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

// Lookup table columns of a categorical encoding
const (
	inputColumn  = "input"
	outputColumn = "output"
)

// Builder builds the dictionary and mining schema fragments. The zero
// value emits each data field once and uses DefaultNumericNamespace.
type Builder struct {
	DuplicateDataFields bool
	NumericNamespace    string
}

// BuildDataDictionary builds a data dictionary with the default Builder
func BuildDataDictionary(tc *schema.Context) (*pmml.DataDictionary, error) {
	return Builder{}.DataDictionary(tc)
}

// BuildTransformationDictionary builds a transformation dictionary with the
// default Builder
func BuildTransformationDictionary(tc *schema.Context) (*pmml.TransformationDictionary, *schema.Context, error) {
	return Builder{}.TransformationDictionary(tc)
}

// DataDictionary declares one DataField per input feature. Categorical
// features list their vocabulary as Value entries in code order. The
// context is not modified.
func (b Builder) DataDictionary(tc *schema.Context) (*pmml.DataDictionary, error) {
	input := tc.Input()
	if len(input) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "input schema is empty")
	}

	passes := 1
	if b.DuplicateDataFields {
		passes = 2
	}

	dd := &pmml.DataDictionary{
		DataFields: make([]pmml.DataField, 0, passes*len(input)),
	}
	for pass := 0; pass < passes; pass++ {
		for _, f := range input {
			dd.DataFields = append(dd.DataFields, dataField(f))
		}
	}
	dd.NumberOfFields = len(dd.DataFields)

	return dd, nil
}

func dataField(f feature.Feature) pmml.DataField {
	field := pmml.DataField{
		Name:     f.Name(),
		OpType:   string(f.OpType()),
		DataType: string(f.DataType()),
	}
	if c, ok := f.(*feature.CategoricalFeature); ok {
		values := c.Values()
		field.Values = make([]pmml.Value, len(values))
		for i, v := range values {
			field.Values[i] = pmml.Value{Value: v}
		}
	}
	return field
}

// TransformationDictionary encodes each categorical input as a derived
// double field through an inline lookup table mapping vocabulary value i to
// i. Numeric inputs pass through under their own name and emit nothing.
// It returns the fragment and a copy of tc whose numeric schema holds one
// derived feature per input, in input order.
func (b Builder) TransformationDictionary(tc *schema.Context) (*pmml.TransformationDictionary, *schema.Context, error) {
	input := tc.Input()
	if len(input) == 0 {
		return nil, nil, errors.New(errors.ErrorTypeConfig, "input schema is empty")
	}
	if tc.HasNumeric() {
		return nil, nil, errors.New(errors.ErrorTypeValidation, "transformation dictionary already built for this context")
	}

	namespace := b.NumericNamespace
	if namespace == "" {
		namespace = DefaultNumericNamespace
	}

	td := &pmml.TransformationDictionary{}
	numeric := make([]feature.Feature, 0, len(input))
	for _, f := range input {
		c, ok := f.(*feature.CategoricalFeature)
		if !ok {
			numeric = append(numeric, feature.NewRealNumeric(f.Name(), ""))
			continue
		}

		derived := feature.NewRealNumeric(c.Name(), namespace)
		td.DerivedFields = append(td.DerivedFields, lookupField(c, derived))
		numeric = append(numeric, derived)
	}

	checkNumericLength(input, numeric)

	return td, tc.WithNumeric(numeric), nil
}

func lookupField(source *feature.CategoricalFeature, derived *feature.RealNumericFeature) pmml.DerivedField {
	values := source.Values()
	rows := make([]pmml.Row, len(values))
	for code, v := range values {
		rows[code] = pmml.NewRow(inputColumn, v, outputColumn, strconv.Itoa(code))
	}

	return pmml.DerivedField{
		Name:     derived.FullName(),
		OpType:   string(derived.OpType()),
		DataType: string(derived.DataType()),
		MapValues: &pmml.MapValues{
			OutputColumn: outputColumn,
			DataType:     string(derived.DataType()),
			FieldColumnPairs: []pmml.FieldColumnPair{
				{Field: source.FullName(), Column: inputColumn},
			},
			InlineTable: &pmml.InlineTable{Rows: rows},
		},
	}
}

// checkNumericLength panics when the derived schema does not line up with
// the inputs. That can only happen through a builder defect.
func checkNumericLength(input, numeric []feature.Feature) {
	if len(numeric) != len(input) {
		panic(errors.Fault("derived numeric schema length does not match input schema").
			WithDetail("input", len(input)).
			WithDetail("numeric", len(numeric)))
	}
}
