// Package estimator holds trained model parameters that pmmlconv can
// convert. Estimators are plain data; training happens elsewhere.
//
// An estimator file names its kind and carries the parameters:
//
//	{"kind": "linear_regression", "coefficients": [0.4, -1.2], "intercept": 3}
//
//	kind: logistic_regression
//	classes: ["no", "yes"]
//	coefficients: [[0.8, 0.1]]
//	intercepts: [-0.5]
package estimator

import (
	"math"
	"reflect"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

// Kind names an estimator type in files
type Kind string

const (
	KindLinearRegression   Kind = "linear_regression"
	KindLogisticRegression Kind = "logistic_regression"
)

// LinearRegression is an ordinary least squares fit: one coefficient per
// model input and an intercept
type LinearRegression struct {
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
}

// Validate checks the parameters against the number of model inputs
func (m *LinearRegression) Validate(inputs int) error {
	if len(m.Coefficients) != inputs {
		return errors.Newf(errors.ErrorTypeValidation,
			"linear regression has %d coefficients for %d inputs", len(m.Coefficients), inputs).
			WithDetail("coefficients", len(m.Coefficients)).
			WithDetail("inputs", inputs)
	}
	if err := checkFinite("coefficients", m.Coefficients); err != nil {
		return err
	}
	return checkFinite("intercept", []float64{m.Intercept})
}

// LogisticRegression is a fitted logistic classifier. A binary model has
// two classes and one coefficient row scoring Classes[1]; a multinomial
// model has one row and one intercept per class.
type LogisticRegression struct {
	Classes      []string    `json:"classes" yaml:"classes"`
	Coefficients [][]float64 `json:"coefficients" yaml:"coefficients"`
	Intercepts   []float64   `json:"intercepts" yaml:"intercepts"`
}

// Binary reports whether the model separates exactly two classes
func (m *LogisticRegression) Binary() bool {
	return len(m.Classes) == 2
}

// Validate checks the parameters against the number of model inputs
func (m *LogisticRegression) Validate(inputs int) error {
	if len(m.Classes) < 2 {
		return errors.Newf(errors.ErrorTypeValidation, "logistic regression needs at least 2 classes, got %d", len(m.Classes))
	}
	seen := make(map[string]struct{}, len(m.Classes))
	for _, c := range m.Classes {
		if _, dup := seen[c]; dup {
			return errors.Newf(errors.ErrorTypeValidation, "logistic regression repeats class %q", c).
				WithDetail("class", c)
		}
		seen[c] = struct{}{}
	}

	rows := len(m.Classes)
	if m.Binary() {
		rows = 1
	}
	if len(m.Coefficients) != rows || len(m.Intercepts) != rows {
		return errors.Newf(errors.ErrorTypeValidation,
			"logistic regression over %d classes needs %d coefficient rows and intercepts, got %d and %d",
			len(m.Classes), rows, len(m.Coefficients), len(m.Intercepts))
	}
	for i, row := range m.Coefficients {
		if len(row) != inputs {
			return errors.Newf(errors.ErrorTypeValidation,
				"logistic regression row %d has %d coefficients for %d inputs", i, len(row), inputs).
				WithDetail("row", i).
				WithDetail("inputs", inputs)
		}
		if err := checkFinite("coefficients", row); err != nil {
			return err
		}
	}
	return checkFinite("intercepts", m.Intercepts)
}

// Name returns the estimator's kind for known types and its Go type
// otherwise
func Name(est any) string {
	switch est.(type) {
	case *LinearRegression:
		return string(KindLinearRegression)
	case *LogisticRegression:
		return string(KindLogisticRegression)
	case nil:
		return "<nil>"
	default:
		return reflect.TypeOf(est).String()
	}
}

func checkFinite(what string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrorTypeValidation, "%s[%d] is not finite", what, i).
				WithDetail("index", i)
		}
	}
	return nil
}
