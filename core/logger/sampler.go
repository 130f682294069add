package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

type ratio struct {
	num, den uint64
	seen     atomic.Uint64
}

// ratioSampler lets num out of every den events through.
type ratioSampler struct {
	cur atomic.Pointer[ratio]
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set swaps the ratio and restarts counting. Non-positive values let everything through.
func (s *ratioSampler) Set(num, den int) {
	r := &ratio{}
	if num > 0 && den > 0 {
		r.num, r.den = uint64(min(num, den)), uint64(den)
	}
	s.cur.Store(r)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.cur.Load()
	if r.den == 0 {
		return true
	}
	return (r.seen.Add(1)-1)%r.den < r.num
}

// parseRatioSpec reads "n/d" or "d" (1/d). Anything else yields 0/0.
func parseRatioSpec(spec string) (int, int) {
	num, den, hasSlash := strings.Cut(strings.TrimSpace(spec), "/")
	if !hasSlash {
		num, den = "1", num
	}
	n, errN := strconv.Atoi(strings.TrimSpace(num))
	d, errD := strconv.Atoi(strings.TrimSpace(den))
	if errN != nil || errD != nil || d <= 0 {
		return 0, 0
	}
	return n, d
}
