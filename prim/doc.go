// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package prim defines the primitives consumed by the rasterization core:
// vertices with their per-vertex attributes, primitive kinds and batches.
//
// Vertices are plain values. Every stage that produces new vertices (the
// left-edge clipper and the texture-space tesselator) returns fresh copies,
// so callers keep ownership of the vertices they pass in.
package prim
