package converter

import (
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

// BuildMiningSchema lists the inputs with their invalid-value treatment,
// then the outputs marked as predicted, each in declared order
func BuildMiningSchema(tc *schema.Context) *pmml.MiningSchema {
	input, output := tc.Input(), tc.Output()

	ms := &pmml.MiningSchema{
		MiningFields: make([]pmml.MiningField, 0, len(input)+len(output)),
	}
	for _, f := range input {
		ms.MiningFields = append(ms.MiningFields, pmml.MiningField{
			Name:                  f.Name(),
			InvalidValueTreatment: string(f.InvalidValueTreatment()),
		})
	}
	for _, f := range output {
		ms.MiningFields = append(ms.MiningFields, pmml.MiningField{
			Name:      f.FullName(),
			UsageType: pmml.UsagePredicted,
		})
	}
	return ms
}
