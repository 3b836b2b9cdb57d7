// Package id generates sortable run identifiers.
package id

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// New returns a fresh ULID. ULIDs sort lexicographically by creation time,
// which keeps journal runs in chronological order.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
