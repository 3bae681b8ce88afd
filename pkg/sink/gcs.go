package sink

import (
	"context"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

type gcsWriter struct {
	client *storage.Client
	cancel context.CancelFunc
	w      *storage.Writer
	object string
	start  time.Time
	logger *zap.Logger
}

func openGCS(ctx context.Context, target Target, opts Options, l *zap.Logger) (Writer, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create GCS client")
	}

	// cancelling the writer context is the only way to stop an upload
	// from completing
	wctx, cancel := context.WithCancel(ctx)
	w := client.Bucket(target.Bucket).Object(target.Key).NewWriter(wctx)
	w.ContentType = ContentType
	w.Metadata = map[string]string{
		"producer": "pmmlconv",
		"created":  time.Now().UTC().Format(time.RFC3339),
	}

	return &gcsWriter{
		client: client,
		cancel: cancel,
		w:      w,
		object: target.Key,
		start:  time.Now(),
		logger: l,
	}, nil
}

func (g *gcsWriter) Write(p []byte) (int, error) {
	n, err := g.w.Write(p)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeConnection, "failed to write to GCS")
	}
	return n, nil
}

func (g *gcsWriter) Close() error {
	defer g.cancel()
	err := g.w.Close()
	if cerr := g.client.Close(); cerr != nil {
		g.logger.Warn("failed to close GCS client", zap.Error(cerr))
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close GCS writer").
			WithDetail("object", g.object)
	}
	g.logger.Info("document uploaded to GCS",
		zap.String("object", g.object),
		zap.Duration("duration", time.Since(g.start)))
	return nil
}

// Abort cancels the upload; the object is left as it was
func (g *gcsWriter) Abort(cause error) error {
	g.cancel()
	_ = g.w.Close()
	if err := g.client.Close(); err != nil {
		g.logger.Warn("failed to close GCS client", zap.Error(err))
	}
	g.logger.Warn("GCS upload aborted",
		zap.String("object", g.object),
		zap.Error(cause))
	return nil
}
