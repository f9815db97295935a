package device

import (
	"fmt"
	"sort"
)

// heapAlign is the byte alignment of every block returned by Heap.
const heapAlign = 64

// span is a free byte range [off, off+size).
type span struct {
	off, size uint32
}

// HeapStats reports heap occupancy.
type HeapStats struct {
	Size      uint32 // total bytes
	Used      uint32 // bytes in live blocks
	Live      int    // live blocks
	FreeSpans int    // free ranges, a measure of fragmentation
}

// Heap is a first-fit Allocator over a fixed-size device memory.
// Adjacent free ranges are coalesced on Free.
//
// A Heap is not safe for concurrent use.
type Heap struct {
	size uint32
	free []span // sorted by offset
	live map[uint32]Block
	next uint32
	used uint32
}

// NewHeap returns a heap managing size bytes of device memory.
func NewHeap(size uint32) *Heap {
	h := &Heap{
		size: size,
		live: make(map[uint32]Block),
	}
	if size > 0 {
		h.free = []span{{0, size}}
	}
	return h
}

// Alloc implements Allocator.
func (h *Heap) Alloc(width, height int, _ AllocFlags) (Block, error) {
	if width <= 0 || height <= 0 {
		return Block{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	need := uint64(width) * uint64(height) * BytesPerTexel
	need = (need + heapAlign - 1) &^ (heapAlign - 1)
	if need > uint64(h.size) {
		return Block{}, fmt.Errorf("%w: %d bytes requested, heap is %d", ErrOutOfMemory, need, h.size)
	}
	n := uint32(need)
	for i, s := range h.free {
		if s.size < n {
			continue
		}
		h.next++
		b := Block{Handle: h.next, Base: s.off, Width: width, Height: height}
		if s.size == n {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{s.off + n, s.size - n}
		}
		h.live[b.Handle] = b
		h.used += n
		return b, nil
	}
	return Block{}, fmt.Errorf("%w: no free range of %d bytes", ErrOutOfMemory, n)
}

// Free implements Allocator. Freeing an unknown or already freed block is
// a no-op.
func (h *Heap) Free(b Block) {
	lb, ok := h.live[b.Handle]
	if !ok {
		return
	}
	delete(h.live, b.Handle)
	n := alignedSize(lb)
	h.used -= n

	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > lb.Base })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = span{lb.Base, n}

	// Merge with the following range, then with the preceding one.
	if i+1 < len(h.free) && h.free[i].off+h.free[i].size == h.free[i+1].off {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].size == h.free[i].off {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// Stats returns the current occupancy.
func (h *Heap) Stats() HeapStats {
	return HeapStats{Size: h.size, Used: h.used, Live: len(h.live), FreeSpans: len(h.free)}
}

func alignedSize(b Block) uint32 {
	n := b.Size()
	return (n + heapAlign - 1) &^ (heapAlign - 1)
}
