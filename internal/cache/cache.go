// Package cache stores raw model responses keyed by the request that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented store with per-entry expiry
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "groundcheck:v1:"

// ResponseKey identifies a response by everything that shapes the request:
// provider, model, system instruction, search flag and the normalised claim.
func ResponseKey(provider, model, instruction string, search bool, claim string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, instruction, searchFlag(search), claim} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func searchFlag(on bool) string {
	if on {
		return "search"
	}
	return "nosearch"
}
