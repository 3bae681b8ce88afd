// Package sink opens the destination a PMML document is written to.
//
// A destination is a URI:
//
//	-                          standard output
//	model.pmml                 local file (file:// also accepted)
//	s3://bucket/models/a.pmml  Amazon S3 object, streamed through the upload manager
//	gs://bucket/models/a.pmml  Google Cloud Storage object
//
// The returned Writer must be closed or aborted. Nothing becomes visible
// at the destination before Close: files are written to a temporary name
// and renamed, and object uploads only complete on Close. Abort discards
// whatever was written and leaves the previous content in place.
package sink

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/compression"
	"github.com/ajitpratap0/pmmlconv/pkg/errors"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
)

// Scheme identifies a destination kind
type Scheme string

const (
	SchemeStdout Scheme = "stdout"
	SchemeFile   Scheme = "file"
	SchemeS3     Scheme = "s3"
	SchemeGCS    Scheme = "gs"
)

// ContentType is the media type attached to uploaded documents
const ContentType = "application/xml"

// Target is a parsed destination
type Target struct {
	Scheme Scheme
	// Path is the local path for SchemeFile
	Path string
	// Bucket and Key address an object for SchemeS3 and SchemeGCS
	Bucket string
	Key    string
}

func (t Target) String() string {
	switch t.Scheme {
	case SchemeStdout:
		return "-"
	case SchemeFile:
		return t.Path
	default:
		return string(t.Scheme) + "://" + t.Bucket + "/" + t.Key
	}
}

// ParseURI parses a destination URI
func ParseURI(uri string) (Target, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "" || uri == "-":
		return Target{Scheme: SchemeStdout}, nil
	case strings.HasPrefix(uri, "s3://"), strings.HasPrefix(uri, "gs://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Target{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid destination URI").
				WithDetail("uri", uri)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
			return Target{}, errors.Newf(errors.ErrorTypeConfig, "destination %q needs a bucket and an object key", uri).
				WithDetail("uri", uri)
		}
		return Target{Scheme: Scheme(u.Scheme), Bucket: u.Host, Key: key}, nil
	case strings.HasPrefix(uri, "file://"):
		return Target{Scheme: SchemeFile, Path: strings.TrimPrefix(uri, "file://")}, nil
	case strings.Contains(uri, "://"):
		return Target{}, errors.Newf(errors.ErrorTypeConfig, "unsupported destination scheme in %q", uri).
			WithDetail("uri", uri)
	default:
		return Target{Scheme: SchemeFile, Path: uri}, nil
	}
}

// Writer is an open destination
type Writer interface {
	io.WriteCloser
	// Abort discards everything written so far. cause is passed to the
	// underlying upload so it fails instead of completing.
	Abort(cause error) error
}

// Options configures how destinations are opened
type Options struct {
	// Compression wraps the stream; the URI is used as given
	Compression compression.Algorithm
	Level       compression.Level

	// S3
	Region      string
	Endpoint    string
	PartSize    int64
	Concurrency int

	// GCS
	CredentialsFile string

	Logger *zap.Logger
}

// Open parses uri and opens the destination for writing
func Open(ctx context.Context, uri string, opts Options) (Writer, error) {
	target, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return OpenTarget(ctx, target, opts)
}

// OpenTarget opens an already parsed destination
func OpenTarget(ctx context.Context, target Target, opts Options) (Writer, error) {
	l := opts.Logger
	if l == nil {
		l = logger.Get()
	}
	l = logger.WithContext(ctx, l).With(zap.String("destination", target.String()))

	var (
		dst Writer
		err error
	)
	switch target.Scheme {
	case SchemeStdout:
		dst = nopCloser{os.Stdout}
	case SchemeFile:
		dst, err = openFile(target.Path)
	case SchemeS3:
		dst, err = openS3(ctx, target, opts, l)
	case SchemeGCS:
		dst, err = openGCS(ctx, target, opts, l)
	default:
		err = errors.Newf(errors.ErrorTypeConfig, "unsupported destination scheme %q", target.Scheme)
	}
	if err != nil {
		return nil, err
	}

	if opts.Compression == "" || opts.Compression == compression.None {
		return dst, nil
	}
	cw, err := compression.NewWriter(dst, opts.Compression, opts.Level)
	if err != nil {
		_ = dst.Abort(err)
		return nil, err
	}
	l.Debug("compressing output",
		zap.String("algorithm", string(opts.Compression)),
		zap.Stringer("level", opts.Level))
	return &stacked{top: cw, bottom: dst}, nil
}

// fileWriter writes to a temporary file next to the destination and
// renames it into place on Close
type fileWriter struct {
	*os.File
	path string
}

func openFile(path string) (Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output directory").
				WithDetail("path", path)
		}
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	return &fileWriter{File: f, path: path}, nil
}

func (f *fileWriter) Close() error {
	if err := f.File.Close(); err != nil {
		_ = os.Remove(f.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write output file").
			WithDetail("path", f.path)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil { //nolint:gosec // G302: documents are meant to be shared
		_ = os.Remove(f.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to set output file mode").
			WithDetail("path", f.path)
	}
	if err := os.Rename(f.Name(), f.path); err != nil {
		_ = os.Remove(f.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to move output file into place").
			WithDetail("path", f.path)
	}
	return nil
}

func (f *fileWriter) Abort(error) error {
	_ = f.File.Close()
	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to remove temporary output file").
			WithDetail("path", f.Name())
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (nopCloser) Abort(error) error { return nil }

// stacked closes a compression layer before its destination
type stacked struct {
	top    io.WriteCloser
	bottom Writer
}

func (s *stacked) Write(p []byte) (int, error) {
	return s.top.Write(p)
}

func (s *stacked) Close() error {
	if err := s.top.Close(); err != nil {
		_ = s.bottom.Abort(err)
		return err
	}
	return s.bottom.Close()
}

// Abort discards the destination first so the compressor's final flush
// cannot complete it
func (s *stacked) Abort(cause error) error {
	err := s.bottom.Abort(cause)
	_ = s.top.Close()
	return err
}
