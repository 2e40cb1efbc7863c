// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

// Batcher groups records into batches of a fixed capacity.
type Batcher[T any] struct {
	capacity int
	items    []T
}

// NewBatcher returns a Batcher of the given capacity. A capacity below one
// is treated as one.
func NewBatcher[T any](capacity int) *Batcher[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Batcher[T]{capacity: capacity, items: make([]T, 0, capacity)}
}

// Add appends item. When the batch reaches capacity it is returned with
// full=true and the Batcher starts a new one.
func (b *Batcher[T]) Add(item T) (batch []T, full bool) {
	b.items = append(b.items, item)
	if len(b.items) < b.capacity {
		return nil, false
	}
	batch = b.items
	b.items = make([]T, 0, b.capacity)
	return batch, true
}

// Flush returns the pending partial batch, or nil if there is none. It must
// be called once input ends.
func (b *Batcher[T]) Flush() []T {
	if len(b.items) == 0 {
		return nil
	}
	batch := b.items
	b.items = make([]T, 0, b.capacity)
	return batch
}

// Len returns the number of pending items.
func (b *Batcher[T]) Len() int { return len(b.items) }

// Capacity returns the batch size.
func (b *Batcher[T]) Capacity() int { return b.capacity }
