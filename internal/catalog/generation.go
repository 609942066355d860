package catalog

import "sync/atomic"

// Generation tags catalog requests so a response superseded by a newer
// request can be recognised and discarded.
type Generation struct {
	current atomic.Uint64
}

// Next issues a new tag; every earlier tag stops being current.
func (g *Generation) Next() uint64 {
	return g.current.Add(1)
}

// IsCurrent reports whether tag is the latest issued tag.
func (g *Generation) IsCurrent(tag uint64) bool {
	return g.current.Load() == tag
}
