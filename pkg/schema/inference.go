package schema

import (
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	jsonpool "github.com/ajitpratap0/pmmlconv/pkg/json"
	stringpool "github.com/ajitpratap0/pmmlconv/pkg/strings"
)

// Kind is the value class detected for a sampled field
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindDouble  Kind = "double"
	KindBoolean Kind = "boolean"
	KindUnknown Kind = "unknown"
)

// InferredField is the inference result for one field
type InferredField struct {
	Name        string        `json:"name"`
	Kind        Kind          `json:"kind"`
	Confidence  float64       `json:"confidence"`
	Nullable    bool          `json:"nullable"`
	Cardinality int           `json:"cardinality"`
	Values      []string      `json:"values,omitempty"`
	Stats       *NumericStats `json:"stats,omitempty"`
}

// NumericStats summarizes a numeric field
type NumericStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// InferenceEngine derives declared schemas from sample records
type InferenceEngine struct {
	logger *zap.Logger

	confidenceThreshold float64
	maxCategories       int
}

// InferenceOption configures an InferenceEngine
type InferenceOption func(*InferenceEngine)

// WithConfidenceThreshold sets the share of samples the dominant kind must
// reach. Fields below it are treated as categorical strings.
func WithConfidenceThreshold(threshold float64) InferenceOption {
	return func(e *InferenceEngine) { e.confidenceThreshold = threshold }
}

// WithMaxCategories bounds the vocabulary of an inferred categorical field
func WithMaxCategories(n int) InferenceOption {
	return func(e *InferenceEngine) { e.maxCategories = n }
}

// NewInferenceEngine creates an inference engine
func NewInferenceEngine(logger *zap.Logger, opts ...InferenceOption) *InferenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &InferenceEngine{
		logger:              logger,
		confidenceThreshold: 0.95,
		maxCategories:       1000,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Infer builds a Context from sample records. Fields named in targets
// become outputs; all others are inputs. Fields are ordered by name since
// decoded records carry no column order; vocabularies keep the order in
// which values first appear.
func (e *InferenceEngine) Infer(samples []map[string]interface{}, targets ...string) (*Context, []InferredField, error) {
	if len(samples) == 0 {
		return nil, nil, errors.New(errors.ErrorTypeValidation, "no samples provided for inference")
	}

	columns := make(map[string][]interface{})
	for _, sample := range samples {
		for key, value := range sample {
			columns[key] = append(columns[key], value)
		}
	}
	// absent keys count as nulls
	for name, values := range columns {
		for len(values) < len(samples) {
			values = append(values, nil)
		}
		columns[name] = values
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		if _, ok := columns[t]; !ok {
			return nil, nil, errors.Newf(errors.ErrorTypeValidation, "target %q does not appear in the samples", t).
				WithDetail("feature", t)
		}
		isTarget[t] = true
	}

	var inputs, outputs []feature.Feature
	fields := make([]InferredField, 0, len(names))
	for _, name := range names {
		inferred := e.InferField(name, columns[name])
		fields = append(fields, inferred)

		f, err := e.toFeature(inferred)
		if err != nil {
			return nil, nil, err
		}

		e.logger.Debug("inferred field",
			zap.String("field", name),
			zap.String("kind", string(inferred.Kind)),
			zap.Float64("confidence", inferred.Confidence),
			zap.Int("cardinality", inferred.Cardinality),
			zap.Bool("nullable", inferred.Nullable))

		if isTarget[name] {
			outputs = append(outputs, f)
		} else {
			inputs = append(inputs, f)
		}
	}

	ctx, err := NewContext(inputs, outputs)
	if err != nil {
		return nil, nil, err
	}

	e.logger.Info("schema inferred",
		zap.Int("samples", len(samples)),
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)))

	return ctx, fields, nil
}

// InferField classifies the sampled values of one field
func (e *InferenceEngine) InferField(name string, values []interface{}) InferredField {
	inferred := InferredField{Name: name, Kind: KindUnknown}

	nonNull := make([]interface{}, 0, len(values))
	for _, v := range values {
		if v == nil {
			inferred.Nullable = true
			continue
		}
		nonNull = append(nonNull, v)
	}
	if len(nonNull) == 0 {
		return inferred
	}

	kindCounts := make(map[Kind]int)
	for _, v := range nonNull {
		kindCounts[detectKind(v)]++
	}

	// integers are doubles too, so a mix of both is numeric
	if kindCounts[KindInteger] > 0 && kindCounts[KindDouble] > 0 {
		kindCounts[KindDouble] += kindCounts[KindInteger]
		delete(kindCounts, KindInteger)
	}

	dominant, maxCount := KindUnknown, 0
	for _, k := range []Kind{KindString, KindBoolean, KindInteger, KindDouble, KindUnknown} {
		if kindCounts[k] > maxCount {
			dominant, maxCount = k, kindCounts[k]
		}
	}

	inferred.Confidence = float64(maxCount) / float64(len(nonNull))
	if inferred.Confidence < e.confidenceThreshold && len(kindCounts) > 1 {
		dominant = KindString
	}
	inferred.Kind = dominant

	vocabulary := uniqueStrings(nonNull)
	inferred.Cardinality = len(vocabulary)

	switch dominant {
	case KindString:
		inferred.Values = vocabulary
	case KindBoolean:
		inferred.Values = []string{"false", "true"}
	case KindInteger, KindDouble:
		inferred.Stats = numericStats(nonNull)
	}

	return inferred
}

func (e *InferenceEngine) toFeature(inferred InferredField) (feature.Feature, error) {
	treatment := feature.ReturnInvalid
	if inferred.Nullable {
		treatment = feature.AsMissing
	}

	switch inferred.Kind {
	case KindString:
		if e.maxCategories > 0 && len(inferred.Values) > e.maxCategories {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"field %q has %d distinct values, more than the %d allowed for a categorical field",
				inferred.Name, len(inferred.Values), e.maxCategories).
				WithDetail("feature", inferred.Name)
		}
		return feature.NewCategorical(inferred.Name, inferred.Values).WithInvalidValueTreatment(treatment), nil
	case KindBoolean:
		return feature.NewCategorical(inferred.Name, inferred.Values).
			WithDataType(feature.Boolean).
			WithInvalidValueTreatment(treatment), nil
	case KindInteger:
		return feature.NewNumeric(inferred.Name, feature.Integer, feature.Continuous).WithInvalidValueTreatment(treatment), nil
	case KindDouble:
		return feature.NewNumeric(inferred.Name, feature.Double, feature.Continuous).WithInvalidValueTreatment(treatment), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "cannot infer a type for field %q", inferred.Name).
			WithDetail("feature", inferred.Name)
	}
}

func detectKind(value interface{}) Kind {
	switch v := value.(type) {
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger
	case float32:
		return floatKind(float64(v))
	case float64:
		return floatKind(v)
	case jsonpool.Number:
		if _, err := v.Int64(); err == nil {
			return KindInteger
		}
		if _, err := v.Float64(); err == nil {
			return KindDouble
		}
		return KindUnknown
	case string:
		return KindString
	default:
		return KindUnknown
	}
}

func floatKind(f float64) Kind {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return KindInteger
	}
	return KindDouble
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case jsonpool.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return 0, false
	default:
		f, err := strconv.ParseFloat(stringpool.ValueToString(v), 64)
		return f, err == nil
	}
}

func numericStats(values []interface{}) *NumericStats {
	var stats *NumericStats
	sum, n := 0.0, 0
	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if stats == nil {
			stats = &NumericStats{Min: f, Max: f}
		}
		stats.Min = math.Min(stats.Min, f)
		stats.Max = math.Max(stats.Max, f)
		sum += f
		n++
	}
	if stats != nil {
		stats.Mean = sum / float64(n)
	}
	return stats
}

func uniqueStrings(values []interface{}) []string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0)
	for _, v := range values {
		key := stringpool.ValueToString(v)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, key)
		}
	}
	return unique
}
