// Package errors provides examples of structured error handling in pmmlconv.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConfig, "unknown mode").
		WithDetail("mode", "clustering").
		WithDetail("supported", "classification, regression")

	fmt.Println(err.Error())

	// Output:
	// config: unknown mode
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	originalErr := io.ErrUnexpectedEOF

	err := errors.Wrap(originalErr, errors.ErrorTypeFile, "failed to read schema file").
		WithDetail("file", "schema.yaml")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a file error
	// Original error was unexpected EOF
}

// ExampleIsType demonstrates that IsType only looks at the outermost typed error.
func ExampleIsType() {
	miss := errors.New(errors.ErrorTypeNotFound, "no converter for *estimator.KMeans")
	wrapped := errors.Wrap(miss, errors.ErrorTypeConfig, "conversion aborted")

	fmt.Printf("Is not_found: %v\n", errors.IsType(miss, errors.ErrorTypeNotFound))
	fmt.Printf("Wrapped is config: %v\n", errors.IsType(wrapped, errors.ErrorTypeConfig))
	fmt.Printf("Wrapped is not_found: %v\n", errors.IsType(wrapped, errors.ErrorTypeNotFound))

	// Output:
	// Is not_found: true
	// Wrapped is config: true
	// Wrapped is not_found: false
}

// ExampleFault shows how internal consistency faults surface as panics.
func ExampleFault() {
	defer func() {
		if r := recover(); r != nil {
			if fault, ok := r.(*errors.Error); ok {
				fmt.Println(fault.Type)
			}
		}
	}()

	panic(errors.Fault("numeric schema length mismatch"))

	// Output:
	// internal
}

// Example_errorChain shows how wrapped messages read end to end.
func Example_errorChain() {
	err := errors.New(errors.ErrorTypeConfig, "unknown data type \"decimal\"")
	err = errors.Wrap(err, errors.ErrorTypeFile, "invalid schema file").
		WithDetail("file", "schema.yaml")

	fmt.Println(err)

	// Output:
	// file: invalid schema file: config: unknown data type "decimal"
}

// Example_details prints details in deterministic order.
func Example_details() {
	err := errors.New(errors.ErrorTypeValidation, "coefficient count mismatch").
		WithDetail("want", 3).
		WithDetail("got", 2)

	for _, k := range err.DetailKeys() {
		fmt.Printf("%s=%v\n", k, err.Details[k])
	}

	// Output:
	// got=2
	// want=3
}
