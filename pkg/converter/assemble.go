package converter

import (
	"bytes"
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
	"github.com/ajitpratap0/pmmlconv/pkg/metrics"
	"github.com/ajitpratap0/pmmlconv/pkg/observability"
	"github.com/ajitpratap0/pmmlconv/pkg/pmml"
	"github.com/ajitpratap0/pmmlconv/pkg/pool"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

// Assemble builds the document for tc. It returns the document and the
// context populated with the derived numeric schema that was handed to the
// model provider. The model provider is called exactly once.
func (c *Converter) Assemble(ctx context.Context, tc *schema.Context) (*pmml.PMML, *schema.Context, error) {
	ctx, span := observability.StartSpan(ctx, "converter.assemble")
	span.SetAttribute("mode", string(c.mode))
	timer := metrics.NewTimer("assemble")

	doc, populated, err := c.assemble(ctx, tc, span)

	metrics.RecordConversion(string(c.mode), err, timer.Stop())
	span.Finish(err)
	return doc, populated, err
}

func (c *Converter) assemble(ctx context.Context, tc *schema.Context, span *observability.Span) (*pmml.PMML, *schema.Context, error) {
	log := logger.WithContext(ctx, c.logger)

	header := c.header()

	dd, err := c.builder.DataDictionary(tc)
	if err != nil {
		return nil, nil, err
	}

	td, populated, err := c.builder.TransformationDictionary(tc)
	if err != nil {
		return nil, nil, err
	}

	lookups := len(td.DerivedFields)
	passthrough := len(tc.Input()) - lookups
	metrics.RecordDerivedFields(lookups, passthrough)
	span.SetAttribute("data_fields", dd.NumberOfFields)
	span.SetAttribute("derived_fields", lookups)

	var model pmml.Model
	if c.model != nil {
		model, err = c.model(ctx, c.estimator, populated, c.mode)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeValidation, "model provider failed").
				WithDetail("mode", string(c.mode))
		}
	}
	if model == nil {
		log.Warn("model provider returned no model; document has no model element")
	}

	doc := pmml.New()
	doc.Header = header
	doc.DataDictionary = dd
	doc.TransformationDictionary = td
	doc.Model = model

	log.Debug("assembled document",
		zap.Int("data_fields", dd.NumberOfFields),
		zap.Int("derived_fields", lookups),
		zap.Int("passthrough_fields", passthrough),
		zap.Int("outputs", len(tc.Output())),
		zap.Bool("has_model", model != nil))

	return doc, populated, nil
}

// Render assembles the document for tc and encodes it into buf. Nothing
// is written to buf's previous content when assembly fails.
func (c *Converter) Render(ctx context.Context, tc *schema.Context, buf *bytes.Buffer) error {
	doc, _, err := c.Assemble(ctx, tc)
	if err != nil {
		return err
	}

	start := buf.Len()
	if err := pmml.Encode(buf, doc); err != nil {
		buf.Truncate(start)
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode document")
	}
	metrics.RecordDocumentSize(int64(buf.Len() - start))
	return nil
}

// Convert assembles the document for tc and encodes it to w. It returns
// the number of bytes written. The document is encoded in full before w
// is touched, so a failed conversion writes nothing.
func (c *Converter) Convert(ctx context.Context, tc *schema.Context, w io.Writer) (int64, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	if err := c.Render(ctx, tc, buf); err != nil {
		return 0, err
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeConnection, "failed to write document")
	}

	logger.WithContext(ctx, c.logger).Info("document written", zap.Int64("bytes", n))
	return n, nil
}

// DerivedName returns the full name under which a model must reference
// input f once the transformation dictionary has been built
func DerivedName(tc *schema.Context, f feature.Feature) (string, bool) {
	numeric, ok := tc.Numeric()
	if !ok {
		return "", false
	}
	for i, in := range tc.Input() {
		if in.FullName() == f.FullName() {
			return numeric[i].FullName(), true
		}
	}
	return "", false
}
