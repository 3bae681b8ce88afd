// Package config provides the configuration for pmmlconv.
//
// A single Config structure covers every setting, organized into sections:
//   - PMML: document header content and the emitted version
//   - Conversion: mode, data field duplication, numeric namespace
//   - Output: destination URI and compression
//   - Observability: logging, metrics, tracing
//
// # Usage
//
//	cfg, err := config.Load("pmmlconv.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	opts, err := cfg.ConverterOptions(logger.Get())
//
// # Environment Variables
//
// Values may reference the environment with ${VAR_NAME}:
//
//	# pmmlconv.yaml
//	pmml:
//	  copyright: ${MODEL_OWNER}
//	output:
//	  uri: s3://${MODEL_BUCKET}/credit/v3.pmml
//	  compression: zstd
//
// Any key can also be overridden with a PMMLCONV_ variable, dots becoming
// underscores: PMMLCONV_OUTPUT_URI, PMMLCONV_CONVERSION_DUPLICATE_DATA_FIELDS.
//
// Load validates the result; NewConfig returns the defaults.
package config
