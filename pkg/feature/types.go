package feature

import (
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

// DataType is a PMML 4.2 DATATYPE value
type DataType string

const (
	String   DataType = "string"
	Integer  DataType = "integer"
	Float    DataType = "float"
	Double   DataType = "double"
	Boolean  DataType = "boolean"
	Date     DataType = "date"
	Time     DataType = "time"
	DateTime DataType = "dateTime"
)

var dataTypes = []DataType{String, Integer, Float, Double, Boolean, Date, Time, DateTime}

// Valid reports whether dt is a recognized data type
func (dt DataType) Valid() bool {
	for _, known := range dataTypes {
		if dt == known {
			return true
		}
	}
	return false
}

// ParseDataType converts a schema-file value into a DataType
func ParseDataType(s string) (DataType, error) {
	dt := DataType(s)
	if !dt.Valid() {
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown data type %q", s)
	}
	return dt, nil
}

// OpType is a PMML operational type
type OpType string

const (
	Categorical OpType = "categorical"
	Ordinal     OpType = "ordinal"
	Continuous  OpType = "continuous"
)

// Valid reports whether ot is a recognized optype
func (ot OpType) Valid() bool {
	switch ot {
	case Categorical, Ordinal, Continuous:
		return true
	}
	return false
}

// ParseOpType converts a schema-file value into an OpType
func ParseOpType(s string) (OpType, error) {
	ot := OpType(s)
	if !ot.Valid() {
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown optype %q", s)
	}
	return ot, nil
}

// InvalidValueTreatment is a PMML 4.2 INVALID-VALUE-TREATMENT-METHOD
type InvalidValueTreatment string

const (
	ReturnInvalid InvalidValueTreatment = "returnInvalid"
	AsIs          InvalidValueTreatment = "asIs"
	AsMissing     InvalidValueTreatment = "asMissing"
)

// Valid reports whether t is a recognized treatment
func (t InvalidValueTreatment) Valid() bool {
	switch t {
	case ReturnInvalid, AsIs, AsMissing:
		return true
	}
	return false
}

// ParseInvalidValueTreatment converts a schema-file value; empty means the default
func ParseInvalidValueTreatment(s string) (InvalidValueTreatment, error) {
	if s == "" {
		return ReturnInvalid, nil
	}
	t := InvalidValueTreatment(s)
	if !t.Valid() {
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown invalid value treatment %q", s)
	}
	return t, nil
}
