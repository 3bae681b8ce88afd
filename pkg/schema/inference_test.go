package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
)

const samplesNDJSON = `{"color": "green", "age": 31, "score": 0.5, "member": true, "label": 1}
{"color": "red", "age": 45, "score": 1, "member": false, "label": 0}
{"color": "green", "age": null, "score": 2.25, "member": true, "label": 1}
{"color": "blue", "score": 3, "member": false, "label": 0}
`

func TestInfer(t *testing.T) {
	samples, err := jsonpool.DecodeRecords(strings.NewReader(samplesNDJSON))
	require.NoError(t, err)

	engine := NewInferenceEngine(zaptest.NewLogger(t))
	c, fields, err := engine.Infer(samples, "label")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	in := c.Input()
	names := make([]string, len(in))
	for i, f := range in {
		names[i] = f.Name()
	}
	assert.Equal(t, []string{"age", "color", "member", "score"}, names)

	age := in[0]
	assert.Equal(t, feature.Integer, age.DataType())
	assert.Equal(t, feature.AsMissing, age.InvalidValueTreatment(), "null and absent values make a field nullable")

	color, ok := in[1].(*feature.CategoricalFeature)
	require.True(t, ok)
	assert.Equal(t, []string{"green", "red", "blue"}, color.Values(), "vocabulary keeps first-seen order")

	member, ok := in[2].(*feature.CategoricalFeature)
	require.True(t, ok)
	assert.Equal(t, feature.Boolean, member.DataType())

	score := in[3]
	assert.Equal(t, feature.Double, score.DataType(), "integral and fractional numbers mix to double")

	out := c.Output()
	require.Len(t, out, 1)
	assert.Equal(t, "label", out[0].Name())
	assert.Equal(t, feature.Integer, out[0].DataType())

	for _, f := range fields {
		if f.Name == "age" {
			require.NotNil(t, f.Stats)
			assert.Equal(t, 31.0, f.Stats.Min)
			assert.Equal(t, 45.0, f.Stats.Max)
			assert.Equal(t, 38.0, f.Stats.Mean)
		}
	}
}

func TestInferMixedKindsFallBackToStrings(t *testing.T) {
	engine := NewInferenceEngine(nil)
	got := engine.InferField("zip", []interface{}{"02139", jsonpool.Number("10001"), "94103"})

	assert.Equal(t, KindString, got.Kind)
	assert.Equal(t, []string{"02139", "10001", "94103"}, got.Values)
	assert.InDelta(t, 2.0/3.0, got.Confidence, 1e-9)
}

func TestInferErrors(t *testing.T) {
	engine := NewInferenceEngine(nil, WithMaxCategories(2))

	_, _, err := engine.Infer(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, _, err = engine.Infer([]map[string]interface{}{{"a": 1.0}}, "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `target "b"`)

	_, _, err = engine.Infer([]map[string]interface{}{{"a": "x"}, {"a": "y"}, {"a": "z"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 distinct values")

	_, _, err = engine.Infer([]map[string]interface{}{{"a": nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot infer a type")
}
