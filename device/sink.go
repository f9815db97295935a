// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// pollCheckInterval is the number of empty polls between deadline checks.
const pollCheckInterval = 64

// SinkOption configures a Sink.
type SinkOption func(*sinkOptions)

type sinkOptions struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithWaitTimeout bounds every wait for free slots or device idle.
// A zero duration waits forever.
func WithWaitTimeout(d time.Duration) SinkOption {
	return func(o *sinkOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger used to report waits. Nil disables logging.
func WithLogger(l *slog.Logger) SinkOption {
	return func(o *sinkOptions) {
		o.logger = l
	}
}

// SinkStats counts sink activity.
type SinkStats struct {
	Writes   int // register writes issued
	Programs int // programs submitted
	Stalls   int // reservations that had to poll
	Timeouts int // waits that gave up
}

// Sink feeds register programs into a Device without overrunning its FIFO.
//
// Before writing, the sink polls Device.FreeSlots until enough slots are
// free. The poll is a busy-wait. Without a timeout it never gives up; a
// wedged device blocks the caller until ctx is done.
//
// A Sink is not safe for concurrent use.
type Sink struct {
	dev     Device
	timeout time.Duration
	log     *slog.Logger
	stats   SinkStats
}

// NewSink returns a sink writing to dev.
func NewSink(dev Device, opts ...SinkOption) *Sink {
	var o sinkOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{dev: dev, timeout: o.timeout, log: o.logger}
}

// Device returns the underlying device.
func (s *Sink) Device() Device { return s.dev }

// Stats returns a snapshot of the sink counters.
func (s *Sink) Stats() SinkStats { return s.stats }

// Reserve waits until at least n command slots are free.
func (s *Sink) Reserve(ctx context.Context, n int) error {
	if n > s.dev.Capacity() {
		return fmt.Errorf("%w: %d > %d", ErrProgramTooLarge, n, s.dev.Capacity())
	}
	if s.dev.FreeSlots() >= n {
		return nil
	}
	s.stats.Stalls++
	return s.poll(ctx, "slots", func() bool { return s.dev.FreeSlots() >= n })
}

// WaitIdle waits until the device reports it is not busy.
func (s *Sink) WaitIdle(ctx context.Context) error {
	return s.poll(ctx, "idle", func() bool {
		return s.dev.ReadRegister(RegStatus)&StatusBusy == 0
	})
}

// Submit writes every register of p, reserving slots in chunks no larger
// than the FIFO. Writes are issued in program order.
func (s *Sink) Submit(ctx context.Context, p *Program) error {
	writes := p.Writes()
	capacity := s.dev.Capacity()
	if capacity < 1 && len(writes) > 0 {
		return fmt.Errorf("%w: device has no FIFO slots", ErrProgramTooLarge)
	}
	for len(writes) > 0 {
		n := min(len(writes), capacity)
		if err := s.Reserve(ctx, n); err != nil {
			return err
		}
		for _, w := range writes[:n] {
			s.dev.WriteRegister(w.Reg, w.Value)
		}
		s.stats.Writes += n
		writes = writes[n:]
	}
	s.stats.Programs++
	return nil
}

func (s *Sink) poll(ctx context.Context, what string, ready func() bool) error {
	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	for i := 0; ; i++ {
		if ready() {
			return nil
		}
		if i%pollCheckInterval != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			s.stats.Timeouts++
			s.log.Warn("device: wait timed out", "waiting_for", what, "timeout", s.timeout)
			return fmt.Errorf("%w: %s after %v", ErrWaitTimeout, what, s.timeout)
		}
	}
}
