package logger

import "sync/atomic"

type ratio struct{ keep, window uint64 }

// sampler lets keep out of every window events through. A zero ratio allows everything.
type sampler struct {
	r    atomic.Pointer[ratio]
	seen atomic.Uint64
}

func (s *sampler) set(keep, window int) {
	if keep <= 0 || window <= 0 {
		s.r.Store(nil)
	} else {
		keep = min(keep, window)
		s.r.Store(&ratio{keep: uint64(keep), window: uint64(window)})
	}
	s.seen.Store(0)
}

func (s *sampler) allow() bool {
	r := s.r.Load()
	if r == nil {
		return true
	}
	n := s.seen.Add(1) - 1
	return n%r.window < r.keep
}
