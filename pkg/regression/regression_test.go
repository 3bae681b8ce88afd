package regression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/estimator"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
	"github.com/ajitpratap0/pmmlconv/pkg/testutil"
)

// derived returns the color/age context after the transformation dictionary
// has been built
func derived(t *testing.T) *schema.Context {
	t.Helper()
	_, populated, err := converter.BuildTransformationDictionary(testutil.ColorAgeContext(t))
	require.NoError(t, err)
	return populated
}

func predictors(table pmml.RegressionTable) map[string]float64 {
	out := make(map[string]float64, len(table.NumericPredictors))
	for _, p := range table.NumericPredictors {
		out[p.Name] = p.Coefficient
	}
	return out
}

func TestLinear(t *testing.T) {
	est := &estimator.LinearRegression{Coefficients: []float64{0.3, -1.1}, Intercept: 2.5}

	model, err := Linear(testutil.TestContext(t), est, derived(t), converter.Regression)
	require.NoError(t, err)

	rm, ok := model.(*pmml.RegressionModel)
	require.True(t, ok)
	assert.Equal(t, "regression", rm.FunctionName)
	assert.Empty(t, rm.NormalizationMethod)
	require.Len(t, rm.RegressionTables, 1)

	table := rm.RegressionTables[0]
	assert.Equal(t, 2.5, table.Intercept)
	require.Len(t, table.NumericPredictors, 2)
	assert.Equal(t, "numeric.color", table.NumericPredictors[0].Name)
	assert.Equal(t, "age", table.NumericPredictors[1].Name)
	assert.Equal(t, map[string]float64{"numeric.color": 0.3, "age": -1.1}, predictors(table))

	require.NotNil(t, rm.MiningSchema)
	require.Len(t, rm.MiningSchema.MiningFields, 3)
	assert.Equal(t, "label", rm.MiningSchema.MiningFields[2].Name)
	assert.Equal(t, pmml.UsagePredicted, rm.MiningSchema.MiningFields[2].UsageType)
}

func TestLogisticBinary(t *testing.T) {
	est := &estimator.LogisticRegression{
		Classes:      []string{"no", "yes"},
		Coefficients: [][]float64{{0.8, 0.1}},
		Intercepts:   []float64{-0.5},
	}

	model, err := Logistic(testutil.TestContext(t), est, derived(t), converter.Classification)
	require.NoError(t, err)

	rm := model.(*pmml.RegressionModel)
	assert.Equal(t, "classification", rm.FunctionName)
	assert.Equal(t, "logit", rm.NormalizationMethod)
	require.Len(t, rm.RegressionTables, 2)

	assert.Equal(t, "yes", rm.RegressionTables[0].TargetCategory)
	assert.Equal(t, -0.5, rm.RegressionTables[0].Intercept)
	assert.Equal(t, map[string]float64{"numeric.color": 0.8, "age": 0.1}, predictors(rm.RegressionTables[0]))

	assert.Equal(t, "no", rm.RegressionTables[1].TargetCategory)
	assert.Zero(t, rm.RegressionTables[1].Intercept)
	assert.Empty(t, rm.RegressionTables[1].NumericPredictors)
}

func TestLogisticMultinomial(t *testing.T) {
	est := &estimator.LogisticRegression{
		Classes:      []string{"a", "b", "c"},
		Coefficients: [][]float64{{1, 2}, {3, 4}, {5, 6}},
		Intercepts:   []float64{0.1, 0.2, 0.3},
	}

	model, err := Logistic(testutil.TestContext(t), est, derived(t), converter.Classification)
	require.NoError(t, err)

	rm := model.(*pmml.RegressionModel)
	assert.Equal(t, "softmax", rm.NormalizationMethod)
	require.Len(t, rm.RegressionTables, 3)
	for i, class := range est.Classes {
		assert.Equal(t, class, rm.RegressionTables[i].TargetCategory)
		assert.Equal(t, est.Intercepts[i], rm.RegressionTables[i].Intercept)
		assert.Equal(t, est.Coefficients[i][1], rm.RegressionTables[i].NumericPredictors[1].Coefficient)
	}
}

func TestProviderErrors(t *testing.T) {
	linear := &estimator.LinearRegression{Coefficients: []float64{1, 2}}
	logistic := &estimator.LogisticRegression{
		Classes:      []string{"no", "yes"},
		Coefficients: [][]float64{{1, 2}},
		Intercepts:   []float64{0},
	}

	tests := []struct {
		name     string
		provider converter.ModelProvider
		est      any
		mode     converter.Mode
		tc       func(t *testing.T) *schema.Context
		want     string
	}{
		{name: "linear given logistic", provider: Linear, est: logistic, mode: converter.Regression, tc: derived, want: "expected a linear_regression estimator"},
		{name: "linear in classification", provider: Linear, est: linear, mode: converter.Classification, tc: derived, want: "regression mode only"},
		{name: "logistic in regression", provider: Logistic, est: logistic, mode: converter.Regression, tc: derived, want: "classification mode only"},
		{name: "logistic given nil", provider: Logistic, est: nil, mode: converter.Classification, tc: derived, want: "got <nil>"},
		{name: "not derived", provider: Linear, est: linear, mode: converter.Regression, tc: testutil.ColorAgeContext, want: "not been derived"},
		{
			name:     "coefficient count",
			provider: Linear,
			est:      &estimator.LinearRegression{Coefficients: []float64{1}},
			mode:     converter.Regression,
			tc:       derived,
			want:     "1 coefficients for 2 inputs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.provider(testutil.TestContext(t), tt.est, tt.tc(t), tt.mode)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegister(t *testing.T) {
	reg := registry.NewRegistry(testutil.TestLogger(t))
	require.NoError(t, Register(reg, converter.Options{Logger: testutil.TestLogger(t)}))
	reg.Seal()

	infos := reg.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "linear_regression", infos[0].Name)
	assert.True(t, infos[0].SupportsMode(converter.Regression))
	assert.Equal(t, "logistic_regression", infos[1].Name)
	assert.True(t, infos[1].SupportsMode(converter.Classification))

	conv, err := reg.Create(&estimator.LogisticRegression{})
	require.NoError(t, err)
	assert.Equal(t, converter.Classification, conv.Mode())

	// value types are not registered
	_, ok := reg.Find(estimator.LinearRegression{})
	assert.False(t, ok)

	assert.Error(t, Register(reg, converter.Options{}), "sealed registry")
}

func TestConvertEndToEnd(t *testing.T) {
	reg := registry.NewRegistry(testutil.TestLogger(t))
	require.NoError(t, Register(reg, converter.Options{Logger: testutil.TestLogger(t)}))

	est := &estimator.LinearRegression{Coefficients: []float64{0.3, -1.1}, Intercept: 2.5}
	conv, err := reg.Create(est)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := conv.Convert(testutil.TestContext(t), testutil.ColorAgeContext(t), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	order := []string{"<DataDictionary", "<TransformationDictionary", "<RegressionModel", "<MiningSchema", "<RegressionTable"}
	last := -1
	for _, tag := range order {
		i := strings.Index(out, tag)
		require.Greater(t, i, last, "%s out of order", tag)
		last = i
	}
	assert.Contains(t, out, `<NumericPredictor name="numeric.color" coefficient="0.3"></NumericPredictor>`)
	assert.Contains(t, out, `functionName="regression"`)
}

func TestConvertWrappedProviderError(t *testing.T) {
	reg := registry.NewRegistry(testutil.TestLogger(t))
	require.NoError(t, Register(reg, converter.Options{Logger: testutil.TestLogger(t)}))

	conv, err := reg.Create(&estimator.LinearRegression{Coefficients: []float64{1, 2, 3}})
	require.NoError(t, err)

	_, _, err = conv.Assemble(testutil.TestContext(t), testutil.ColorAgeContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "model provider failed")
}
