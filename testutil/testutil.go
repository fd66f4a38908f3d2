package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/pagedb/document"
)

// Cities is the value pool for the "city" field of generated users.
var Cities = []string{"NY", "LA", "SF", "CHI", "SEA", "BOS", "AUS", "DEN"}

var firstNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Heidi"}

// KV is a generated key with its document.
type KV struct {
	Key   string
	Value document.Value
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) is proportional to 1/k^s; s=1.5 gives a heavy head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Key formats a zero-padded key so lexicographic and numeric order agree.
func Key(prefix string, i int) string {
	return fmt.Sprintf("%s:%05d", prefix, i)
}

// Users generates n user documents keyed user:00000 and up. Ages are
// uniform in [18, 78) and cities follow a Zipf distribution over Cities.
func (r *RNG) Users(n int) []KV {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]KV, n)
	for i := range out {
		out[i] = KV{
			Key: Key("user", i),
			Value: document.Object(document.Document{
				"name": document.String(firstNames[r.rand.Intn(len(firstNames))]),
				"age":  document.Int(int64(18 + r.rand.Intn(60))),
				"city": document.String(Cities[r.zipfLocked(len(Cities), 1.5)]),
			}),
		}
	}
	return out
}

// Document generates an object with the given number of fields named f0,
// f1 and so on, cycling through ints, floats, strings and bools.
func (r *RNG) Document(fields int) document.Value {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := make(document.Document, fields)
	for i := range fields {
		name := "f" + strconv.Itoa(i)
		switch i % 4 {
		case 0:
			doc[name] = document.Int(r.rand.Int63n(1000))
		case 1:
			doc[name] = document.Float(r.rand.Float64())
		case 2:
			doc[name] = document.String(strconv.FormatUint(r.rand.Uint64(), 36))
		default:
			doc[name] = document.Bool(r.rand.Intn(2) == 1)
		}
	}
	return document.Object(doc)
}
