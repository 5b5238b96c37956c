// Package testutil provides deterministic dependencies for tests and
// scenario runs.
package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialUUIDs generates UUIDs 00000000-0000-0000-0000-000000000001,
// ...0002, and so on.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario produces byte-identical traces on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialUUIDs struct {
	mu  sync.Mutex
	seq uint64
}

// NewSequentialUUIDs creates a generator whose first UUID ends in 1.
func NewSequentialUUIDs() *SequentialUUIDs {
	return &SequentialUUIDs{}
}

// NewSequentialUUIDsAfter creates a generator whose first UUID ends in n+1.
// Scenario runs use it so generated IDs never collide with seeded ones.
func NewSequentialUUIDsAfter(n uint64) *SequentialUUIDs {
	return &SequentialUUIDs{seq: n}
}

// Generate returns the next UUID in sequence.
func (g *SequentialUUIDs) Generate() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return Seq(g.seq)
}

// Count returns how many UUIDs have been generated.
func (g *SequentialUUIDs) Count() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. After Reset the next UUID ends in 1 again.
func (g *SequentialUUIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// Seq returns the UUID whose low 64 bits are n.
func Seq(n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}

// FixedUUID generates the same UUID every time.
//
// Thread-safety: FixedUUID is stateless and safe for concurrent use.
type FixedUUID struct {
	id uuid.UUID
}

// NewFixedUUID creates a generator that always returns id.
// A nil id is replaced by DEADBEEF-DEAD-BEEF-DEAD-BEEFDEADBEEF.
func NewFixedUUID(id uuid.UUID) *FixedUUID {
	if id == uuid.Nil {
		id = uuid.MustParse("DEADBEEF-DEAD-BEEF-DEAD-BEEFDEADBEEF")
	}
	return &FixedUUID{id: id}
}

// Generate returns the fixed UUID.
func (g *FixedUUID) Generate() uuid.UUID {
	return g.id
}
