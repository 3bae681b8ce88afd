package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
)

func colorAge() ([]feature.Feature, []feature.Feature) {
	return []feature.Feature{
			feature.NewCategorical("color", []string{"red", "green", "blue"}),
			feature.NewContinuous("age"),
		}, []feature.Feature{
			feature.NewContinuous("label"),
		}
}

func TestNewContextHasNoNumericSlot(t *testing.T) {
	in, out := colorAge()
	c, err := NewContext(in, out)
	require.NoError(t, err)

	assert.False(t, c.HasNumeric())
	_, ok := c.Numeric()
	assert.False(t, ok)
	_, ok = c.Schema(SlotNumeric)
	assert.False(t, ok)

	assert.Len(t, c.Input(), 2)
	assert.Len(t, c.Output(), 1)
	assert.Equal(t, 1, c.CategoricalCount())
}

func TestNewContextRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		input  []feature.Feature
		output []feature.Feature
		want   string
	}{
		{
			name:  "duplicate input",
			input: []feature.Feature{feature.NewContinuous("age"), feature.NewContinuous("age")},
			want:  `duplicate feature "age" in input schema`,
		},
		{
			name:   "duplicate output",
			input:  []feature.Feature{feature.NewContinuous("age")},
			output: []feature.Feature{feature.NewContinuous("y"), feature.NewContinuous("y")},
			want:   `duplicate feature "y" in output schema`,
		},
		{
			name: "same name under different namespaces",
			input: []feature.Feature{
				feature.NewContinuous("x").WithNamespace("a"),
				feature.NewContinuous("x").WithNamespace("b"),
			},
			want: `duplicate feature "x" in input schema`,
		},
		{
			name:  "invalid feature",
			input: []feature.Feature{feature.NewCategorical("color", nil)},
			want:  "invalid input schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContext(tt.input, tt.output)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestSameNameAcrossSchemasIsAllowed(t *testing.T) {
	_, err := NewContext(
		[]feature.Feature{feature.NewContinuous("x")},
		[]feature.Feature{feature.NewContinuous("x")},
	)
	assert.NoError(t, err)
}

func TestWithNumericReturnsNewContext(t *testing.T) {
	in, out := colorAge()
	c := MustContext(in, out)

	numeric := []feature.Feature{
		feature.NewRealNumeric("color", "numeric"),
		feature.NewRealNumeric("age", ""),
	}
	next := c.WithNumeric(numeric)

	assert.False(t, c.HasNumeric(), "original context is unchanged")
	require.True(t, next.HasNumeric())

	got, ok := next.Numeric()
	require.True(t, ok)
	assert.Equal(t, numeric, got)

	// caller's slice is not aliased
	numeric[0] = feature.NewRealNumeric("other", "")
	got, _ = next.Numeric()
	assert.Equal(t, "numeric.color", got[0].FullName())

	f, ok := next.Lookup(SlotNumeric, "numeric.color")
	require.True(t, ok)
	assert.Equal(t, "color", f.Name())

	_, ok = next.Lookup(SlotNumeric, "color")
	assert.False(t, ok)
}

func TestWithNumericTwicePanics(t *testing.T) {
	in, out := colorAge()
	c := MustContext(in, out).WithNumeric(nil)

	assert.True(t, c.HasNumeric(), "an empty numeric schema still counts as created")
	assert.PanicsWithValue(t, "internal: numeric schema already created for this context", func() {
		defer func() {
			if r := recover(); r != nil {
				panic(r.(error).Error())
			}
		}()
		c.WithNumeric([]feature.Feature{feature.NewRealNumeric("age", "")})
	})
}

func TestInputIsACopy(t *testing.T) {
	in, out := colorAge()
	c := MustContext(in, out)

	got := c.Input()
	got[0] = feature.NewContinuous("changed")
	assert.Equal(t, "color", c.Input()[0].Name())

	in[1] = feature.NewContinuous("changed")
	assert.Equal(t, "age", c.Input()[1].Name())
}
