// Package pmmlconv converts trained estimators into PMML 4.2 documents.
//
// A conversion takes an estimator and a transformation context describing
// the model's input and output fields. Categorical inputs are encoded in the
// TransformationDictionary as lookup tables that map each category to its
// zero-based code, so the model element only ever references numeric fields.
// Numeric inputs pass through unchanged.
//
// # Document layout
//
// Every document is assembled in the same order:
//
//	PMML
//	  Header
//	  DataDictionary           one DataField per input and output
//	  TransformationDictionary one DerivedField per categorical input
//	  RegressionModel          MiningSchema followed by the model body
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/ajitpratap0/pmmlconv/pkg/converter"
//	    "github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
//	    "github.com/ajitpratap0/pmmlconv/pkg/estimator"
//	    "github.com/ajitpratap0/pmmlconv/pkg/regression"
//	    "github.com/ajitpratap0/pmmlconv/pkg/schema"
//	)
//
//	reg := registry.NewRegistry(logger)
//	_ = regression.Register(reg, converter.Options{Logger: logger})
//	reg.Seal()
//
//	est, _ := estimator.Load("model.json")
//	tc, _ := schema.LoadFile("schema.yaml")
//	conv, _ := reg.Create(est)
//	_, err := conv.Convert(context.Background(), tc, os.Stdout)
//
// # Key Packages
//
//	pkg/feature      - Feature descriptors and their data types
//	pkg/schema       - Transformation context, schema files and inference
//	pkg/converter    - Dictionary builders and document assembly
//	pkg/regression   - Linear and logistic regression model providers
//	pkg/sink         - Output destinations (stdout, files, S3, GCS)
//	pkg/config       - Configuration loading with ${VAR} substitution
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus metrics
//
// # Command line
//
//	pmmlconv convert -e model.json -s schema.yaml -o model.pmml
//	pmmlconv infer --samples rows.ndjson -t label -o schema.yaml
//	pmmlconv batch jobs.yaml -w 4
//	pmmlconv list
package pmmlconv
