// Package schema holds the transformation context shared by a conversion:
// the declared input and output feature schemas and the derived numeric
// schema produced while the transformation dictionary is built. It also
// loads declared schemas from YAML, JSON and Avro files and infers them
// from sample records.
package schema

import (
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
)

// Slot identifies one of the schemas held by a Context
type Slot string

const (
	// SlotInput holds the declared model inputs
	SlotInput Slot = "input"
	// SlotNumeric holds the derived numeric encoding of the inputs
	SlotNumeric Slot = "numeric"
	// SlotOutput holds the declared model outputs
	SlotOutput Slot = "output"
)

// Context is an immutable set of feature schemas. The numeric slot is
// absent until WithNumeric returns a populated copy.
type Context struct {
	input   []feature.Feature
	output  []feature.Feature
	numeric []feature.Feature

	hasNumeric bool
}

// NewContext validates the declared schemas and returns a context without
// a numeric schema. Every feature must validate and names must be unique
// within each schema.
func NewContext(input, output []feature.Feature) (*Context, error) {
	if err := validateSchema(SlotInput, input); err != nil {
		return nil, err
	}
	if err := validateSchema(SlotOutput, output); err != nil {
		return nil, err
	}

	return &Context{
		input:  append([]feature.Feature(nil), input...),
		output: append([]feature.Feature(nil), output...),
	}, nil
}

// MustContext is NewContext for fixtures that are known to be valid
func MustContext(input, output []feature.Feature) *Context {
	c, err := NewContext(input, output)
	if err != nil {
		panic(err)
	}
	return c
}

// Input returns the declared input schema
func (c *Context) Input() []feature.Feature {
	return append([]feature.Feature(nil), c.input...)
}

// Output returns the declared output schema
func (c *Context) Output() []feature.Feature {
	return append([]feature.Feature(nil), c.output...)
}

// Numeric returns the derived numeric schema and whether it exists yet
func (c *Context) Numeric() ([]feature.Feature, bool) {
	if !c.hasNumeric {
		return nil, false
	}
	return append([]feature.Feature(nil), c.numeric...), true
}

// HasNumeric reports whether the numeric slot has been created
func (c *Context) HasNumeric() bool {
	return c.hasNumeric
}

// Schema returns the schema held in slot
func (c *Context) Schema(slot Slot) ([]feature.Feature, bool) {
	switch slot {
	case SlotInput:
		return c.Input(), true
	case SlotOutput:
		return c.Output(), true
	case SlotNumeric:
		return c.Numeric()
	default:
		return nil, false
	}
}

// WithNumeric returns a copy of c whose numeric slot holds numeric.
// The numeric slot is created once; calling WithNumeric on a context that
// already has one is a programming error and panics.
func (c *Context) WithNumeric(numeric []feature.Feature) *Context {
	if c.hasNumeric {
		panic(errors.Fault("numeric schema already created for this context"))
	}

	next := *c
	next.numeric = append([]feature.Feature{}, numeric...)
	next.hasNumeric = true
	return &next
}

// Lookup finds a feature by full name in slot
func (c *Context) Lookup(slot Slot, fullName string) (feature.Feature, bool) {
	features, ok := c.Schema(slot)
	if !ok {
		return nil, false
	}
	for _, f := range features {
		if f.FullName() == fullName {
			return f, true
		}
	}
	return nil, false
}

// CategoricalCount returns the number of categorical declared inputs
func (c *Context) CategoricalCount() int {
	n := 0
	for _, f := range c.input {
		if feature.IsCategorical(f) {
			n++
		}
	}
	return n
}

func validateSchema(slot Slot, features []feature.Feature) error {
	seen := make(map[string]struct{}, len(features))
	for i, f := range features {
		if err := feature.Validate(f); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid "+string(slot)+" schema").
				WithDetail("slot", string(slot)).
				WithDetail("index", i)
		}
		// the bare name is what DataField and MiningField reference
		if _, dup := seen[f.Name()]; dup {
			return errors.Newf(errors.ErrorTypeConfig, "duplicate feature %q in %s schema", f.Name(), slot).
				WithDetail("slot", string(slot)).
				WithDetail("feature", f.FullName())
		}
		seen[f.Name()] = struct{}{}
	}
	return nil
}
