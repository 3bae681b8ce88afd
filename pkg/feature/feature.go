// Package feature describes the input and output variables of an estimator.
//
// A Feature is an immutable value. Three variants exist:
//
//   - NumericFeature: a continuous or ordinal variable passed to the model as is
//   - CategoricalFeature: a variable with a fixed, ordered vocabulary; the
//     position of a value in the vocabulary is its integer code
//   - RealNumericFeature: a derived double-valued field produced when the
//     input schema is encoded; it may carry a namespace so that it can be
//     referenced unambiguously next to the raw field of the same name
package feature

import (
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	stringpool "github.com/ajitpratap0/pmmlconv/pkg/strings"
)

// Feature is the common read-only view of every feature variant
type Feature interface {
	// Name is the bare feature name
	Name() string
	// Namespace qualifies derived features; empty for declared ones
	Namespace() string
	// FullName is "namespace.name" when a namespace is set, else Name
	FullName() string
	DataType() DataType
	OpType() OpType
	InvalidValueTreatment() InvalidValueTreatment
}

type base struct {
	name      string
	namespace string
	dataType  DataType
	optype    OpType
	invalid   InvalidValueTreatment
}

func (b base) Name() string                                 { return b.name }
func (b base) Namespace() string                            { return b.namespace }
func (b base) DataType() DataType                           { return b.dataType }
func (b base) OpType() OpType                               { return b.optype }
func (b base) InvalidValueTreatment() InvalidValueTreatment { return b.invalid }

func (b base) FullName() string {
	return FullName(b.namespace, b.name)
}

// FullName qualifies name with namespace
func FullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return stringpool.JoinNonEmpty(".", namespace, name)
}

// NumericFeature is a continuous or ordinal input or output
type NumericFeature struct {
	base
}

// NewNumeric creates a numeric feature with the default invalid-value treatment
func NewNumeric(name string, dataType DataType, optype OpType) *NumericFeature {
	return &NumericFeature{base: base{
		name:     name,
		dataType: dataType,
		optype:   optype,
		invalid:  ReturnInvalid,
	}}
}

// NewContinuous is shorthand for a continuous double feature
func NewContinuous(name string) *NumericFeature {
	return NewNumeric(name, Double, Continuous)
}

// WithInvalidValueTreatment returns a copy with the given treatment
func (f *NumericFeature) WithInvalidValueTreatment(t InvalidValueTreatment) *NumericFeature {
	c := *f
	c.invalid = t
	return &c
}

// WithNamespace returns a copy qualified by namespace
func (f *NumericFeature) WithNamespace(namespace string) *NumericFeature {
	c := *f
	c.namespace = namespace
	return &c
}

// CategoricalFeature has an ordered vocabulary of distinct values
type CategoricalFeature struct {
	base
	values []string
}

// NewCategorical creates a categorical string feature. values is copied.
func NewCategorical(name string, values []string) *CategoricalFeature {
	return &CategoricalFeature{
		base: base{
			name:     name,
			dataType: String,
			optype:   Categorical,
			invalid:  ReturnInvalid,
		},
		values: append([]string(nil), values...),
	}
}

// Values returns a copy of the vocabulary in code order
func (f *CategoricalFeature) Values() []string {
	return append([]string(nil), f.values...)
}

// Len returns the vocabulary size
func (f *CategoricalFeature) Len() int {
	return len(f.values)
}

// Code returns the integer code of value and whether it is in the vocabulary
func (f *CategoricalFeature) Code(value string) (int, bool) {
	for i, v := range f.values {
		if v == value {
			return i, true
		}
	}
	return -1, false
}

// WithDataType returns a copy with a different declared data type
func (f *CategoricalFeature) WithDataType(dt DataType) *CategoricalFeature {
	c := *f
	c.values = f.Values()
	c.dataType = dt
	return &c
}

// WithInvalidValueTreatment returns a copy with the given treatment
func (f *CategoricalFeature) WithInvalidValueTreatment(t InvalidValueTreatment) *CategoricalFeature {
	c := *f
	c.values = f.Values()
	c.invalid = t
	return &c
}

// WithNamespace returns a copy qualified by namespace
func (f *CategoricalFeature) WithNamespace(namespace string) *CategoricalFeature {
	c := *f
	c.values = f.Values()
	c.namespace = namespace
	return &c
}

// RealNumericFeature is a derived continuous double field
type RealNumericFeature struct {
	base
}

// NewRealNumeric creates a derived feature; namespace may be empty
func NewRealNumeric(name, namespace string) *RealNumericFeature {
	return &RealNumericFeature{base: base{
		name:      name,
		namespace: namespace,
		dataType:  Double,
		optype:    Continuous,
		invalid:   ReturnInvalid,
	}}
}

// IsCategorical reports whether f carries a vocabulary
func IsCategorical(f Feature) bool {
	_, ok := f.(*CategoricalFeature)
	return ok
}

// Validate checks that f only uses recognized PMML tags and, for
// categorical features, has a usable vocabulary.
func Validate(f Feature) error {
	if f == nil {
		return errors.New(errors.ErrorTypeConfig, "feature is nil")
	}
	if f.Name() == "" {
		return errors.New(errors.ErrorTypeConfig, "feature name is required")
	}
	if !f.DataType().Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "feature %q has unknown data type %q", f.Name(), f.DataType()).
			WithDetail("feature", f.Name())
	}
	if !f.OpType().Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "feature %q has unknown optype %q", f.Name(), f.OpType()).
			WithDetail("feature", f.Name())
	}
	if !f.InvalidValueTreatment().Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "feature %q has unknown invalid value treatment %q", f.Name(), f.InvalidValueTreatment()).
			WithDetail("feature", f.Name())
	}

	switch v := f.(type) {
	case *CategoricalFeature:
		if len(v.values) == 0 {
			return errors.Newf(errors.ErrorTypeConfig, "categorical feature %q has an empty vocabulary", v.Name()).
				WithDetail("feature", v.Name())
		}
		seen := make(map[string]struct{}, len(v.values))
		for _, value := range v.values {
			if _, dup := seen[value]; dup {
				return errors.Newf(errors.ErrorTypeConfig, "categorical feature %q repeats value %q", v.Name(), value).
					WithDetail("feature", v.Name()).
					WithDetail("value", value)
			}
			seen[value] = struct{}{}
		}
	case *NumericFeature:
		if v.OpType() == Categorical {
			return errors.Newf(errors.ErrorTypeConfig, "numeric feature %q cannot be categorical; declare a vocabulary", v.Name()).
				WithDetail("feature", v.Name())
		}
	}

	return nil
}
