package util

import (
	"crypto/sha256"
	"fmt"
)

// maxPlainKey keeps storage keys readable for debugging; longer resource keys
// are replaced by a short content hash.
const maxPlainKey = 64

// StorageKey namespaces a resource key for a shared byte store. Short keys
// stay readable ("snap:<ns>:<key>"); longer ones are hashed deterministically
// so equal resource keys always map to the same storage key.
func StorageKey(prefix, key string) string {
	if len(key) <= maxPlainKey {
		return prefix + ":" + key
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:%x", prefix, sum[:8])
}
