package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching reviewer responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey generates a cache key for one reviewer call. The model
// name is part of the hash so runs against different models never
// share entries; the prompt covers the chunk text, the category list
// and every instruction, so any prompt change invalidates naturally.
func ResponseKey(model, prompt string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s", model, prompt)))
	return "review:v1:" + hex.EncodeToString(hash[:])
}
