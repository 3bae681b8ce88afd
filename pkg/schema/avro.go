package schema

import (
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
)

// FromAvro builds a Context from an Avro record schema. Fields named in
// targets become outputs, in the order they appear in the record; every
// other field is an input.
//
// Type mapping:
//
//	enum            categorical string over its symbols
//	boolean         categorical boolean over ["false", "true"]
//	int, long       continuous integer
//	float           continuous float
//	double          continuous double
//	["null", T]     T with invalidValueTreatment asMissing
//
// Plain strings have no vocabulary and are rejected.
func FromAvro(data []byte, targets ...string) (*Context, error) {
	// goavro rejects malformed schemas with a precise message
	if _, err := goavro.NewCodec(string(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid Avro schema")
	}

	var record map[string]interface{}
	if err := jsonpool.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode Avro schema")
	}
	if record["type"] != "record" {
		return nil, errors.New(errors.ErrorTypeConfig, "Avro schema must be a record")
	}

	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	fields, _ := record["fields"].([]interface{})
	var inputs, outputs []feature.Feature
	for _, raw := range fields {
		field, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := field["name"].(string)

		f, err := avroFieldToFeature(name, field["type"])
		if err != nil {
			return nil, err
		}
		if isTarget[name] {
			outputs = append(outputs, f)
			delete(isTarget, name)
		} else {
			inputs = append(inputs, f)
		}
	}

	for _, t := range targets {
		if isTarget[t] {
			return nil, errors.Newf(errors.ErrorTypeConfig, "target %q is not a field of the Avro record", t).
				WithDetail("feature", t)
		}
	}

	return NewContext(inputs, outputs)
}

func avroFieldToFeature(name string, avroType interface{}) (feature.Feature, error) {
	treatment := feature.ReturnInvalid
	if inner, nullable := unwrapNullable(avroType); nullable {
		avroType = inner
		treatment = feature.AsMissing
	}

	switch t := avroType.(type) {
	case string:
		return avroPrimitiveToFeature(name, t, treatment)
	case map[string]interface{}:
		switch t["type"] {
		case "enum":
			symbols, _ := t["symbols"].([]interface{})
			values := make([]string, 0, len(symbols))
			for _, s := range symbols {
				if str, ok := s.(string); ok {
					values = append(values, str)
				}
			}
			return feature.NewCategorical(name, values).WithInvalidValueTreatment(treatment), nil
		case "int", "long", "float", "double", "boolean", "string":
			// logical types wrap a primitive
			return avroPrimitiveToFeature(name, t["type"].(string), treatment)
		}
	}

	return nil, errors.Newf(errors.ErrorTypeConfig, "Avro field %q has an unsupported type", name).
		WithDetail("feature", name)
}

func avroPrimitiveToFeature(name, avroType string, treatment feature.InvalidValueTreatment) (feature.Feature, error) {
	switch avroType {
	case "int", "long":
		return feature.NewNumeric(name, feature.Integer, feature.Continuous).WithInvalidValueTreatment(treatment), nil
	case "float":
		return feature.NewNumeric(name, feature.Float, feature.Continuous).WithInvalidValueTreatment(treatment), nil
	case "double":
		return feature.NewNumeric(name, feature.Double, feature.Continuous).WithInvalidValueTreatment(treatment), nil
	case "boolean":
		return feature.NewCategorical(name, []string{"false", "true"}).
			WithDataType(feature.Boolean).
			WithInvalidValueTreatment(treatment), nil
	case "string":
		return nil, errors.Newf(errors.ErrorTypeConfig, "Avro field %q is a string without a vocabulary; declare it as an enum", name).
			WithDetail("feature", name)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "Avro field %q has unsupported type %q", name, avroType).
			WithDetail("feature", name)
	}
}

// unwrapNullable returns T for a ["null", T] union
func unwrapNullable(avroType interface{}) (interface{}, bool) {
	union, ok := avroType.([]interface{})
	if !ok || len(union) != 2 {
		return avroType, false
	}
	if union[0] == "null" {
		return union[1], true
	}
	if union[1] == "null" {
		return union[0], true
	}
	return avroType, false
}
