package quota

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ScopeHasher derives opaque store keys from raw scopes so that IP addresses
// and device ids are never persisted in clear text.
type ScopeHasher struct {
	key []byte
}

// NewScopeHasher creates a hasher keyed by salt. An empty salt still hashes,
// but keys are then predictable.
func NewScopeHasher(salt string) *ScopeHasher {
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &ScopeHasher{key: key}
}

// Key returns the store key for a scope kind ("ip", "device") and identifier.
func (h *ScopeHasher) Key(kind, id string) string {
	if h == nil {
		return kind + ":" + id
	}
	m, err := blake2b.New256(h.key)
	if err != nil {
		// key length is bounded in NewScopeHasher
		panic(err)
	}
	m.Write([]byte(kind))
	m.Write([]byte{0})
	m.Write([]byte(id))
	return kind + ":" + hex.EncodeToString(m.Sum(nil))
}
