package pmml

import "encoding/xml"

// RegressionModel is the PMML element for linear and logistic regression
type RegressionModel struct {
	XMLName             xml.Name          `xml:"RegressionModel"`
	ModelName           string            `xml:"modelName,attr,omitempty"`
	FunctionName        string            `xml:"functionName,attr"`
	AlgorithmName       string            `xml:"algorithmName,attr,omitempty"`
	NormalizationMethod string            `xml:"normalizationMethod,attr,omitempty"`
	MiningSchema        *MiningSchema     `xml:"MiningSchema"`
	RegressionTables    []RegressionTable `xml:"RegressionTable"`
}

// ModelElement implements Model
func (m *RegressionModel) ModelElement() string { return "RegressionModel" }

// RegressionTable holds the intercept and coefficients for one target
// (or one target category in classification)
type RegressionTable struct {
	Intercept         float64            `xml:"intercept,attr"`
	TargetCategory    string             `xml:"targetCategory,attr,omitempty"`
	NumericPredictors []NumericPredictor `xml:"NumericPredictor"`
}

// NumericPredictor is one coefficient term
type NumericPredictor struct {
	Name        string  `xml:"name,attr"`
	Exponent    int     `xml:"exponent,attr,omitempty"`
	Coefficient float64 `xml:"coefficient,attr"`
}
