// Package pool provides typed object pooling on top of sync.Pool.
//
// The converter encodes every document into a pooled buffer before handing
// it to a sink, so a batch of conversions reuses a handful of buffers
// instead of growing a fresh one per document.
//
// Example usage:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
//	buf.WriteString("<PMML/>")
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool that resets objects on Put
// and tracks usage statistics. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. newFn builds an object when the pool is empty;
// reset, if not nil, runs before an object goes back into the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object, allocating one if the pool is empty
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.gets, 1)
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats reports how many objects the pool allocated, how many are checked
// out right now, and how many Get calls it served
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

// maxRetainedBuffer keeps one oversized document from pinning its memory
const maxRetainedBuffer = 4 << 20

// Buffers holds the encode buffers shared by every conversion
var Buffers = New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 16<<10)) },
	func(b *bytes.Buffer) {
		if b.Cap() > maxRetainedBuffer {
			*b = bytes.Buffer{}
			return
		}
		b.Reset()
	},
)

// GetBuffer returns an empty buffer from Buffers
func GetBuffer() *bytes.Buffer {
	return Buffers.Get()
}

// PutBuffer returns buf to Buffers. buf must not be used afterwards.
func PutBuffer(buf *bytes.Buffer) {
	Buffers.Put(buf)
}
