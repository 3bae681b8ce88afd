// Package testutil provides testing utilities for pmmlconv
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/pmmlconv/pkg/feature"
	"github.com/ajitpratap0/pmmlconv/pkg/schema"
)

// TestLogger creates a test logger that writes to the test output
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a context that is cancelled when the test ends or
// after 30 seconds
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ColorVocabulary is the vocabulary of the color fixture feature
var ColorVocabulary = []string{"red", "green", "blue"}

// ColorAgeInputs returns a categorical color and a continuous age
func ColorAgeInputs() []feature.Feature {
	return []feature.Feature{
		feature.NewCategorical("color", ColorVocabulary),
		feature.NewContinuous("age"),
	}
}

// ColorAgeContext is the declared schema color, age -> label
func ColorAgeContext(t *testing.T) *schema.Context {
	t.Helper()
	tc, err := schema.NewContext(ColorAgeInputs(), []feature.Feature{feature.NewContinuous("label")})
	require.NoError(t, err)
	return tc
}

// WriteFile writes content to name inside a per-test temp directory and
// returns the full path
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}
