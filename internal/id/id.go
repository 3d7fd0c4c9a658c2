// Package id generates time-sortable identifiers for journal records and
// rebalance instructions.
package id

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a ULID string. IDs generated within the same millisecond remain
// lexicographically increasing, which keeps journal tables naturally ordered
// by insertion time.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
