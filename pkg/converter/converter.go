// Package converter turns an estimator and its declared feature schema into
// a PMML document.
//
// A Converter is bound to one estimator. Assembly builds, in order, the
// header, the data dictionary, the transformation dictionary (which derives
// the numeric schema) and finally the model fragment, so that the model can
// reference derived fields instead of raw inputs:
//
//	conv, err := converter.NewConverter(est, provider, converter.Options{Mode: converter.Regression})
//	doc, populated, err := conv.Assemble(ctx, declared)
package converter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

// Mode is the function a model performs
type Mode string

const (
	Classification Mode = "classification"
	Regression     Mode = "regression"
)

// Valid reports whether m is a recognized mode
func (m Mode) Valid() bool {
	return m == Classification || m == Regression
}

// ParseMode converts a mode name, ignoring case
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown conversion mode %q", s).
			WithDetail("mode", s).
			WithDetail("expected", []string{string(Classification), string(Regression)})
	}
	return m, nil
}

// ModelProvider builds the model fragment. tc already carries the derived
// numeric schema. A nil fragment yields a document without a model element.
type ModelProvider func(ctx context.Context, est any, tc *schema.Context, mode Mode) (pmml.Model, error)

// HeaderProvider builds the document header. Its content is not inspected.
type HeaderProvider func() *pmml.Header

// DefaultNumericNamespace qualifies derived lookup fields
const DefaultNumericNamespace = "numeric"

// Options configures a Converter
type Options struct {
	Mode Mode

	// DuplicateDataFields emits every data field twice, as older
	// releases did
	DuplicateDataFields bool

	// NumericNamespace qualifies derived categorical encodings;
	// empty means DefaultNumericNamespace
	NumericNamespace string

	// Header defaults to StaticHeader(HeaderInfo{})
	Header HeaderProvider

	Logger *zap.Logger
}

// Converter assembles PMML documents for one estimator
type Converter struct {
	estimator any
	model     ModelProvider
	header    HeaderProvider
	builder   Builder
	mode      Mode
	logger    *zap.Logger
}

// NewConverter binds est to a model provider
func NewConverter(est any, model ModelProvider, opts Options) (*Converter, error) {
	if !opts.Mode.Valid() {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown conversion mode %q", opts.Mode).
			WithDetail("mode", string(opts.Mode))
	}

	header := opts.Header
	if header == nil {
		header = StaticHeader(HeaderInfo{})
	}

	l := opts.Logger
	if l == nil {
		l = logger.Get()
	}

	return &Converter{
		estimator: est,
		model:     model,
		header:    header,
		builder: Builder{
			DuplicateDataFields: opts.DuplicateDataFields,
			NumericNamespace:    opts.NumericNamespace,
		},
		mode:   opts.Mode,
		logger: l.With(zap.String("component", "converter")),
	}, nil
}

// Mode returns the conversion mode
func (c *Converter) Mode() Mode {
	return c.mode
}

// Estimator returns the bound estimator
func (c *Converter) Estimator() any {
	return c.estimator
}

// HeaderInfo is the static content of a document header
type HeaderInfo struct {
	Copyright          string
	Description        string
	ApplicationName    string
	ApplicationVersion string
	Timestamp          string
}

// StaticHeader returns a provider emitting the same header every time.
// ApplicationName defaults to "pmmlconv".
func StaticHeader(info HeaderInfo) HeaderProvider {
	name := info.ApplicationName
	if name == "" {
		name = "pmmlconv"
	}
	return func() *pmml.Header {
		return &pmml.Header{
			Copyright:   info.Copyright,
			Description: info.Description,
			Application: &pmml.Application{
				Name:    name,
				Version: info.ApplicationVersion,
			},
			Timestamp: info.Timestamp,
		}
	}
}
