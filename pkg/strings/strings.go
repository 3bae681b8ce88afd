// Package strings provides pooled string building helpers for pmmlconv
package strings

import (
	"fmt"
	"strconv"

	"github.com/ajitpratap0/pmmlconv/pkg/pool"
)

// Builder is a reusable byte buffer for assembling strings
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns a copy of the built string
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the length of the built string
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// maxPooledBuilder is the largest buffer returned to the pool
const maxPooledBuilder = 64 << 10

var builders = pool.New(
	func() *Builder { return NewBuilder(256) },
	func(b *Builder) {
		if cap(b.buf) > maxPooledBuilder {
			b.buf = make([]byte, 0, 256)
			return
		}
		b.Reset()
	},
)

// GetBuilder retrieves an empty pooled builder
func GetBuilder() *Builder {
	return builders.Get()
}

// PutBuilder returns a builder to the pool
func PutBuilder(builder *Builder) {
	if builder == nil {
		return
	}
	builders.Put(builder)
}

// BuildString builds a string with a pooled builder
func BuildString(fn func(*Builder)) string {
	builder := GetBuilder()
	defer PutBuilder(builder)

	fn(builder)
	return builder.String()
}

// Sprintf provides a pooled alternative to fmt.Sprintf
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return BuildString(func(b *Builder) {
		fmt.Fprintf(b, format, args...)
	})
}

// JoinNonEmpty joins the non-empty parts with sep
func JoinNonEmpty(sep string, parts ...string) string {
	return BuildString(func(b *Builder) {
		first := true
		for _, p := range parts {
			if p == "" {
				continue
			}
			if !first {
				b.WriteString(sep)
			}
			b.WriteString(p)
			first = false
		}
	})
}

// ValueToString converts scalar values to their canonical text form.
// Floats use the shortest representation that round-trips.
func ValueToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return Sprintf("%v", value)
	}
}
