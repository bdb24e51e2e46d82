package ctor

import (
	"github.com/outofforest/mass"
)

// contexts are allocated in bulk during a single construction pass, so they
// come from a mass allocator instead of the heap.
const massChunkSize = 1024

// NewContextMass creates a mass allocator for construction contexts.
func NewContextMass() *mass.Mass[Context] {
	return mass.New[Context](massChunkSize)
}

// NewContext returns a context allocated from m, recording the coordinate at
// the current nesting level and linking it to the enclosing one.
func NewContext(m *mass.Mass[Context], index int64, containing *Context) *Context {
	c := m.New()
	c.index = index
	c.containing = containing
	return c
}

// Context records the coordinate of the element being constructed at one
// nesting level of a construction pass. It is valid only for the duration of
// the synchronous call that created it.
type Context struct {
	index      int64
	containing *Context
}

// Index returns the coordinate at this nesting level.
func (c *Context) Index() int64 {
	return c.index
}

// Containing returns the context of the immediately enclosing level, or nil
// at the outermost dimension.
func (c *Context) Containing() *Context {
	return c.containing
}

// SumOfIndices walks the containing chain summing the coordinate at each
// level. Factories commonly use it as a flattened element identity.
func (c *Context) SumOfIndices() int64 {
	var sum int64
	for ; c != nil; c = c.containing {
		sum += c.index
	}
	return sum
}
