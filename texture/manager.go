// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/accel3d/device"
)

const bytesPerTexel = device.BytesPerTexel

// Allocation is the device copy of a resident texture. It is a node of the
// manager's residency ring.
//
// Allocation implements gpucontext.Texture (the square device size) and
// gpucontext.TextureRegionUpdater (level 0 updates that write through to
// the source pixels and the device copy).
type Allocation struct {
	mgr    *Manager
	tex    *Texture
	block  device.Block
	layout Layout
	next   *Allocation

	mipmapped bool
	loaded    []bool
	lumAlpha  bool
}

var (
	_ gpucontext.Texture              = (*Allocation)(nil)
	_ gpucontext.TextureRegionUpdater = (*Allocation)(nil)
)

// Width returns the side of the square device texture.
func (a *Allocation) Width() int { return a.layout.Side }

// Height returns the side of the square device texture.
func (a *Allocation) Height() int { return a.layout.Side }

// Block returns the device memory block.
func (a *Allocation) Block() device.Block { return a.block }

// Layout returns the level placement inside the block.
func (a *Allocation) Layout() Layout { return a.layout }

// LevelBase returns the device byte address of level k.
func (a *Allocation) LevelBase(k int) uint32 {
	return a.block.Base + a.layout.Offsets[k]
}

// UpdateRegion replaces a rectangle of level 0. data holds h rows of w
// pixels in the texture's source format. The source pixels are updated and
// the rectangle is loaded into device memory.
func (a *Allocation) UpdateRegion(x, y, w, h int, data []byte) error {
	a.mgr.mu.Lock()
	defer a.mgr.mu.Unlock()

	t := a.tex
	if t.alloc != a {
		return ErrNotResident
	}
	if t.validity != Valid {
		return fmt.Errorf("%w: texture %d changed since it was placed", ErrStale, t.id)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidRegion, w, h)
	}
	lvl := t.levels[0]
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, lvl.Width, lvl.Height))
	if r.Empty() {
		return nil
	}
	bpp := t.format.Info().BytesPerPixel
	if len(data) < w*h*bpp {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrShortData, len(data), w, h)
	}
	for row := r.Min.Y; row < r.Max.Y; row++ {
		src := data[((row-y)*w+(r.Min.X-x))*bpp:]
		dst := lvl.Pixels[(row*lvl.Width+r.Min.X)*bpp:]
		copy(dst[:r.Dx()*bpp], src[:r.Dx()*bpp])
	}
	return a.mgr.loadRegion(t, 0, r)
}

// Stats counts manager activity.
type Stats struct {
	Validations int // structural checks actually run
	Invalid     int // checks that failed
	Hits        int // EnsureResident calls satisfied without allocating
	Allocations int
	Evictions   int
	Failures    int // allocations that failed after a full eviction sweep
	Loads       int // region loads
	Reloads     int // full reloads triggered by Bind
	BytesLoaded int
	Resident    int
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	maxSize int
}

// WithLogger sets the manager logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxSize lowers the largest accepted texture side. Values outside
// (0, MaxSize] are ignored.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 && n <= MaxSize {
			o.maxSize = n
		}
	}
}

// Manager owns the residency ring of device texture allocations.
//
// Methods are safe for concurrent use; all mutations of the ring and of
// texture residency are serialized.
type Manager struct {
	mu sync.Mutex

	alloc device.Allocator
	mem   device.Memory
	log   *slog.Logger

	maxSize  int
	lumAlpha bool

	// tail of the residency ring; tail.next is the head.
	tail  *Allocation
	count int

	stats Stats
	row   []byte
}

// NewManager returns a manager allocating from alloc and loading into mem.
func NewManager(alloc device.Allocator, mem device.Memory, opts ...Option) *Manager {
	o := options{maxSize: MaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		alloc:   alloc,
		mem:     mem,
		log:     o.logger,
		maxSize: o.maxSize,
	}
}

// SetLuminanceAlpha selects how luminance texels expand on load: false gives
// (L, L, L, 1), true gives (0, 0, 0, L). Resident luminance textures loaded
// in the other mode are reloaded by their next Bind.
func (m *Manager) SetLuminanceAlpha(on bool) {
	m.mu.Lock()
	m.lumAlpha = on
	m.mu.Unlock()
}

// LuminanceAlpha reports the current luminance mode.
func (m *Manager) LuminanceAlpha() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lumAlpha
}

// Stats returns a snapshot of the manager counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Resident = m.count
	return s
}

// Validate runs the structural check once and memoizes the result.
// Further calls return the memo until the texture is mutated.
func (m *Manager) Validate(t *Texture) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validate(t)
}

func (m *Manager) validate(t *Texture) bool {
	switch t.validity {
	case Valid:
		return true
	case Invalid:
		return false
	}
	m.stats.Validations++
	g, err := check(t, m.maxSize)
	if err != nil {
		m.stats.Invalid++
		t.validity, t.err = Invalid, err
		m.log.Debug("texture: validation failed", "id", t.id, "err", err)
		return false
	}
	t.validity, t.err, t.geom = Valid, nil, g
	return true
}

// EnsureResident gives t a device allocation if it has none.
//
// When the pool is full, the lowest-priority resident texture is evicted and
// the allocation retried until it succeeds or nothing is left to evict, in
// which case ErrPoolExhausted is returned. A resident texture returns nil
// immediately, unless it was mutated since it was allocated: the stale
// allocation is then freed and the texture validated and placed again.
func (m *Manager) EnsureResident(t *Texture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureResident(t)
}

func (m *Manager) ensureResident(t *Texture) error {
	if a := t.alloc; a != nil {
		// A mutated texture may no longer fit its old layout.
		if t.validity == Valid && a.mipmapped == t.Mipmapped() {
			m.stats.Hits++
			return nil
		}
		m.evict(t)
	}
	if !m.validate(t) {
		return t.err
	}

	layout := NewLayout(t.geom, t.Mipmapped())
	flags := device.AllocTexture
	if t.Mipmapped() {
		flags |= device.AllocMipmapped
	}
	for {
		b, err := m.alloc.Alloc(layout.Width, layout.Height, flags)
		if err == nil {
			m.insert(&Allocation{
				mgr:       m,
				tex:       t,
				block:     b,
				layout:    layout,
				mipmapped: t.Mipmapped(),
				loaded:    make([]bool, layout.Levels),
			})
			m.stats.Allocations++
			return nil
		}
		if !errors.Is(err, device.ErrOutOfMemory) {
			return fmt.Errorf("texture: allocate %dx%d: %w", layout.Width, layout.Height, err)
		}
		victim := m.lowestPriority()
		if victim == nil {
			m.stats.Failures++
			m.log.Warn("texture: pool exhausted", "id", t.id, "width", layout.Width, "height", layout.Height)
			return fmt.Errorf("%w: texture %d needs %dx%d texels", ErrPoolExhausted, t.id, layout.Width, layout.Height)
		}
		m.log.Debug("texture: evicting", "id", victim.tex.id, "priority", victim.tex.priority, "for", t.id)
		m.evict(victim.tex)
	}
}

// Evict frees the device copy of t. Evicting a non-resident texture is a
// no-op.
func (m *Manager) Evict(t *Texture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict(t)
}

func (m *Manager) evict(t *Texture) {
	a := t.alloc
	if a == nil {
		return
	}
	m.remove(a)
	m.alloc.Free(a.block)
	t.alloc = nil
	m.stats.Evictions++
}

// EvictAll frees every resident allocation. Call it whenever the device
// memory layout is invalidated, for example on a display mode change.
func (m *Manager) EvictAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.tail != nil {
		m.evict(m.tail.next.tex)
	}
}

// Resident returns the device copy of t, if any.
func (m *Manager) Resident(t *Texture) (gpucontext.Texture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.alloc == nil {
		return nil, false
	}
	return t.alloc, true
}

// Allocation returns the device copy of t, or nil.
func (m *Manager) Allocation(t *Texture) *Allocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return t.alloc
}

// ResidentTextures returns the resident textures in ring order, head first.
func (m *Manager) ResidentTextures() []*Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Texture, 0, m.count)
	m.each(func(a *Allocation) { out = append(out, a.tex) })
	return out
}

// Bind makes t ready for drawing: it is validated, made resident and, if
// its device copy is stale, reloaded. A copy is stale when the source data
// changed, when a level was never fully loaded, or when a luminance texture
// was loaded in the other luminance mode.
func (m *Manager) Bind(t *Texture) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureResident(t); err != nil {
		return err
	}
	a := t.alloc
	stale := t.dirty
	for _, ok := range a.loaded {
		stale = stale || !ok
	}
	if t.format.Info().IsLuminance && a.lumAlpha != m.lumAlpha {
		stale = true
	}
	if !stale {
		return nil
	}
	m.stats.Reloads++
	for k := range a.layout.Levels {
		lvl := t.levels[k]
		if err := m.loadRegion(t, k, image.Rect(0, 0, lvl.Width, lvl.Height)); err != nil {
			return err
		}
	}
	t.dirty = false
	return nil
}

// lowestPriority scans the ring from the head and returns the first
// allocation with the smallest priority.
func (m *Manager) lowestPriority() *Allocation {
	var low *Allocation
	m.each(func(a *Allocation) {
		if low == nil || a.tex.priority < low.tex.priority {
			low = a
		}
	})
	return low
}

func (m *Manager) each(fn func(*Allocation)) {
	if m.tail == nil {
		return
	}
	a := m.tail.next
	for {
		fn(a)
		if a == m.tail {
			return
		}
		a = a.next
	}
}

func (m *Manager) insert(a *Allocation) {
	if m.tail == nil {
		a.next = a
	} else {
		a.next = m.tail.next
		m.tail.next = a
	}
	m.tail = a
	m.count++
	a.tex.alloc = a
}

func (m *Manager) remove(a *Allocation) {
	prev := m.tail
	for prev.next != a {
		prev = prev.next
	}
	if prev == a {
		m.tail = nil
	} else {
		prev.next = a.next
		if m.tail == a {
			m.tail = prev
		}
	}
	a.next = nil
	m.count--
}
