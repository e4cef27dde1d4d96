package engine

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"sync"
)

// =============================================================================
// RANDOM SOURCE - Injectable so allocation is deterministic in tests
// =============================================================================

// Rand draws uniform integers for prize allocation. Production uses a
// crypto-seeded PRNG; tests inject a fixed seed.
type Rand interface {
	// IntN returns a uniform integer in [0, n). Panics if n <= 0.
	IntN(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// NewRand returns a Rand seeded from crypto/rand.
func NewRand() Rand {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("cannot seed rng: %v", err))
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	return &lockedRand{rng: mathrand.New(mathrand.NewSource(seed))}
}

// NewSeededRand returns a deterministic Rand for tests.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{rng: mathrand.New(mathrand.NewSource(seed))}
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewID returns a prefixed random identifier, e.g. "rel-1f8a...".
func NewID(prefix string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("cannot generate id: %v", err))
	}
	return prefix + "-" + hex.EncodeToString(b[:])
}
