package autotune

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TunerConfig configures empirical block-size search.
type TunerConfig struct {
	Candidates []int // Block sizes to try; nil means DefaultCandidates.
	Warmup     int   // Untimed runs per candidate.
	Reps       int   // Timed runs per candidate; the median is compared.

	// Logf, when set, receives one line per tuned key.
	Logf func(format string, args ...any)
}

// DefaultTunerConfig returns a configuration with one warmup and three timed
// runs per candidate.
func DefaultTunerConfig() TunerConfig {
	return TunerConfig{
		Candidates: DefaultCandidates(),
		Warmup:     1,
		Reps:       3,
	}
}

// Tuner times every candidate block size the first time a Key is seen and
// caches the fastest one. It is safe for concurrent use.
type Tuner struct {
	cfg   TunerConfig
	mu    sync.Mutex
	cache map[Key]int
	clock func() time.Time
}

// NewTuner creates a Tuner.
func NewTuner(cfg TunerConfig) *Tuner {
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates()
	}
	if cfg.Reps <= 0 {
		cfg.Reps = 1
	}
	if cfg.Warmup < 0 {
		cfg.Warmup = 0
	}
	return &Tuner{
		cfg:   cfg,
		cache: make(map[Key]int),
		clock: time.Now,
	}
}

// Cached returns the cached block size for key, if any.
func (t *Tuner) Cached(key Key) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bs, ok := t.cache[key]
	return bs, ok
}

// Len returns the number of cached keys.
func (t *Tuner) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cache)
}

// Reset drops every cached choice.
func (t *Tuner) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache = make(map[Key]int)
}

// BlockSize implements Strategy.
//
// Candidates that produce the same partition of N as a smaller candidate
// (a single block covering every channel) are skipped. Ties go to the smaller
// candidate.
func (t *Tuner) BlockSize(key Key, run func(blockSize int)) int {
	if bs, ok := t.Cached(key); ok {
		return bs
	}

	cands := effectiveCandidates(t.cfg.Candidates, key.N)
	medians := make([]float64, len(cands))
	for i, c := range cands {
		medians[i] = t.measure(c, run)
	}
	best := cands[floats.MinIdx(medians)]

	t.mu.Lock()
	t.cache[key] = best
	t.mu.Unlock()

	if t.cfg.Logf != nil {
		t.cfg.Logf("autotune: %s -> block %d (median %.3gms over %v)",
			key, best, medians[floats.MinIdx(medians)]*1e3, cands)
	}
	return best
}

// measure returns the median wall time of run(bs) in seconds.
func (t *Tuner) measure(bs int, run func(int)) float64 {
	for i := 0; i < t.cfg.Warmup; i++ {
		run(bs)
	}
	samples := make([]float64, t.cfg.Reps)
	for i := range samples {
		start := t.clock()
		run(bs)
		samples[i] = t.clock().Sub(start).Seconds()
	}
	sort.Float64s(samples)
	return stat.Quantile(0.5, stat.Empirical, samples, nil)
}

// effectiveCandidates drops candidates that cannot change the partition:
// once one candidate covers N in a single block, larger ones are equivalent.
func effectiveCandidates(cands []int, n int) []int {
	sorted := append([]int(nil), cands...)
	sort.Ints(sorted)
	out := make([]int, 0, len(sorted))
	for _, c := range sorted {
		if c <= 0 {
			continue
		}
		out = append(out, c)
		if c >= n {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultCandidates()[0])
	}
	return out
}
