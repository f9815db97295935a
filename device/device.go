// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package device describes the accelerator as seen by the rasterization core:
// a register file fed through a command FIFO, a linear device memory and a
// pool allocator for texture storage.
//
// The core never touches hardware directly. Register I/O, device memory
// writes and block allocation are collaborator capabilities supplied by the
// surrounding driver through the Device, Memory and Allocator interfaces.
// Recorder and Heap are in-memory implementations used by tests and by the
// accel3d command.
package device

// Device is the register interface of the accelerator.
//
// Writes are observed by the device in program order. Every write consumes
// one command slot of the device FIFO; callers must reserve slots through a
// Sink before writing.
type Device interface {
	// WriteRegister queues a register write.
	WriteRegister(r Register, v uint32)

	// ReadRegister reads a register. Reads are not queued.
	ReadRegister(r Register) uint32

	// FreeSlots returns the number of command slots currently free.
	FreeSlots() int

	// Capacity returns the total number of command slots.
	Capacity() int
}

// Memory is the device-visible texture memory.
type Memory interface {
	// WriteMemory copies p into device memory at the given byte offset.
	WriteMemory(offset uint32, p []byte)
}

// AllocFlags describe the intended use of a device memory block.
type AllocFlags uint8

// Allocation flags.
const (
	AllocTexture AllocFlags = 1 << iota
	AllocMipmapped
)

// BytesPerTexel is the size of one texel in device memory. Every supported
// source format is expanded to 32 bits on load.
const BytesPerTexel = 4

// Block is a live device memory allocation.
type Block struct {
	Handle uint32 // allocator-specific identifier, never 0 for a live block
	Base   uint32 // byte offset of the block in device memory
	Width  int    // width in texels
	Height int    // height in texels
}

// Size returns the byte size of the block.
func (b Block) Size() uint32 {
	return uint32(b.Width) * uint32(b.Height) * BytesPerTexel
}

// Allocator hands out blocks of device memory.
type Allocator interface {
	// Alloc reserves a width x height texel block. It returns ErrOutOfMemory
	// when the pool cannot satisfy the request.
	Alloc(width, height int, flags AllocFlags) (Block, error)

	// Free releases a block returned by Alloc.
	Free(b Block)
}
