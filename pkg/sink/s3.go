package sink

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/errors"
)

var errAborted = errors.New(errors.ErrorTypeConnection, "upload aborted")

const (
	defaultPartSize    = 5 * 1024 * 1024 // 5MB, the S3 multipart minimum
	defaultConcurrency = 4
)

// s3Writer feeds a streaming upload through a pipe. The upload runs until
// the pipe is closed.
type s3Writer struct {
	pw     *io.PipeWriter
	done   chan error
	key    string
	start  time.Time
	logger *zap.Logger
}

func openS3(ctx context.Context, target Target, opts Options, l *zap.Logger) (Writer, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Writer(ctx, client, target, opts, l), nil
}

func newS3Writer(ctx context.Context, client manager.UploadAPIClient, target Target, opts Options, l *zap.Logger) *s3Writer {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = defaultPartSize
		if opts.PartSize > 0 {
			u.PartSize = opts.PartSize
		}
		u.Concurrency = defaultConcurrency
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})

	pr, pw := io.Pipe()
	w := &s3Writer{
		pw:     pw,
		done:   make(chan error, 1),
		key:    target.Key,
		start:  time.Now(),
		logger: l,
	}

	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(target.Bucket),
			Key:         aws.String(target.Key),
			Body:        pr,
			ContentType: aws.String(ContentType),
		})
		// unblock writers if the upload gave up early
		pr.CloseWithError(err)
		w.done <- err
	}()

	return w
}

func (w *s3Writer) Write(p []byte) (int, error) {
	n, err := w.pw.Write(p)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeConnection, "failed to stream to S3")
	}
	return n, nil
}

func (w *s3Writer) Close() error {
	_ = w.pw.Close()
	if err := <-w.done; err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload to S3").
			WithDetail("key", w.key)
	}
	w.logger.Info("document uploaded to S3",
		zap.String("key", w.key),
		zap.Duration("duration", time.Since(w.start)))
	return nil
}

// Abort fails the upload with cause; a multipart upload is aborted by the
// upload manager and a single-part upload is never sent
func (w *s3Writer) Abort(cause error) error {
	if cause == nil {
		cause = errAborted
	}
	_ = w.pw.CloseWithError(cause)
	<-w.done
	w.logger.Warn("S3 upload aborted",
		zap.String("key", w.key),
		zap.Error(cause))
	return nil
}
