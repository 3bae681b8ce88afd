// Package regression converts linear and logistic regression estimators
// into PMML RegressionModel fragments.
//
// Predictors reference the derived numeric schema, so a categorical input
// contributes a single term over its integer encoding:
//
//	<NumericPredictor name="numeric.color" coefficient="0.3"/>
//	<NumericPredictor name="age" coefficient="-1.1"/>
package regression

import (
	"context"

	"github.com/ajitpratap0/pmmlconv/pkg/converter"
	"github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/estimator"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

const (
	functionRegression     = "regression"
	functionClassification = "classification"

	normalizationLogit   = "logit"
	normalizationSoftmax = "softmax"
)

// Linear is the ModelProvider for *estimator.LinearRegression
func Linear(_ context.Context, est any, tc *schema.Context, mode converter.Mode) (pmml.Model, error) {
	m, ok := est.(*estimator.LinearRegression)
	if !ok {
		return nil, wrongEstimator(est, estimator.KindLinearRegression)
	}
	if mode != converter.Regression {
		return nil, wrongMode(estimator.KindLinearRegression, mode, converter.Regression)
	}

	names, err := predictorNames(tc)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(len(names)); err != nil {
		return nil, err
	}

	return &pmml.RegressionModel{
		ModelName:        string(estimator.KindLinearRegression),
		FunctionName:     functionRegression,
		AlgorithmName:    "least squares",
		MiningSchema:     converter.BuildMiningSchema(tc),
		RegressionTables: []pmml.RegressionTable{table("", m.Intercept, names, m.Coefficients)},
	}, nil
}

// Logistic is the ModelProvider for *estimator.LogisticRegression. A binary
// model scores Classes[1] through the logit link against a zero table for
// Classes[0]; a multinomial model gets one table per class under softmax.
func Logistic(_ context.Context, est any, tc *schema.Context, mode converter.Mode) (pmml.Model, error) {
	m, ok := est.(*estimator.LogisticRegression)
	if !ok {
		return nil, wrongEstimator(est, estimator.KindLogisticRegression)
	}
	if mode != converter.Classification {
		return nil, wrongMode(estimator.KindLogisticRegression, mode, converter.Classification)
	}

	names, err := predictorNames(tc)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(len(names)); err != nil {
		return nil, err
	}

	model := &pmml.RegressionModel{
		ModelName:    string(estimator.KindLogisticRegression),
		FunctionName: functionClassification,
		MiningSchema: converter.BuildMiningSchema(tc),
	}

	if m.Binary() {
		model.NormalizationMethod = normalizationLogit
		model.RegressionTables = []pmml.RegressionTable{
			table(m.Classes[1], m.Intercepts[0], names, m.Coefficients[0]),
			{TargetCategory: m.Classes[0]},
		}
		return model, nil
	}

	model.NormalizationMethod = normalizationSoftmax
	model.RegressionTables = make([]pmml.RegressionTable, 0, len(m.Classes))
	for i, class := range m.Classes {
		model.RegressionTables = append(model.RegressionTables, table(class, m.Intercepts[i], names, m.Coefficients[i]))
	}
	return model, nil
}

func table(category string, intercept float64, names []string, coefficients []float64) pmml.RegressionTable {
	t := pmml.RegressionTable{
		Intercept:         intercept,
		TargetCategory:    category,
		NumericPredictors: make([]pmml.NumericPredictor, 0, len(names)),
	}
	for i, name := range names {
		t.NumericPredictors = append(t.NumericPredictors, pmml.NumericPredictor{
			Name:        name,
			Coefficient: coefficients[i],
		})
	}
	return t
}

// predictorNames lists the derived numeric fields in input order
func predictorNames(tc *schema.Context) ([]string, error) {
	numeric, ok := tc.Numeric()
	if !ok {
		return nil, errors.New(errors.ErrorTypeValidation, "numeric schema has not been derived")
	}
	names := make([]string, len(numeric))
	for i, f := range numeric {
		names[i] = f.FullName()
	}
	return names, nil
}

func wrongEstimator(est any, want estimator.Kind) error {
	return errors.Newf(errors.ErrorTypeValidation, "expected a %s estimator, got %s", want, estimator.Name(est)).
		WithDetail("estimator", estimator.Name(est))
}

func wrongMode(kind estimator.Kind, got, want converter.Mode) error {
	return errors.Newf(errors.ErrorTypeValidation, "%s supports %s mode only, got %s", kind, want, got).
		WithDetail("mode", string(got))
}

// Register adds the linear and logistic converters to reg. opts applies to
// every converter built; its Mode is replaced with the estimator's own.
func Register(reg *registry.Registry, opts converter.Options) error {
	linear := opts
	linear.Mode = converter.Regression
	if err := reg.Register(&estimator.LinearRegression{}, registry.Info{
		Name:        string(estimator.KindLinearRegression),
		Description: "ordinary least squares as a RegressionModel",
		Modes:       []converter.Mode{converter.Regression},
	}, func(est any) (*converter.Converter, error) {
		return converter.NewConverter(est, Linear, linear)
	}); err != nil {
		return err
	}

	logistic := opts
	logistic.Mode = converter.Classification
	return reg.Register(&estimator.LogisticRegression{}, registry.Info{
		Name:        string(estimator.KindLogisticRegression),
		Description: "binary or multinomial logistic regression as a RegressionModel",
		Modes:       []converter.Mode{converter.Classification},
	}, func(est any) (*converter.Converter, error) {
		return converter.NewConverter(est, Logistic, logistic)
	})
}

