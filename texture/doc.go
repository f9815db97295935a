// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture manages logical textures and their residency in the
// accelerator's bounded texture memory.
//
// A Texture holds the caller's pixel data, which is always the source of
// truth. The Manager keeps a device copy of recently used textures in a pool
// of device memory. Device copies are a cache: any of them may be evicted
// when the pool is under pressure and is recreated on the next Bind.
//
// Eviction is priority driven. When an allocation does not fit, the resident
// texture with the numerically lowest priority is evicted first. Ties are
// broken by residency ring order, which callers must treat as unspecified.
//
// The device only samples square power-of-two textures. Non-square textures
// are stored in a square allocation with the short side tiled until the
// square is filled, and mip levels smaller than the device's minimum block are
// replicated to fill it.
package texture
