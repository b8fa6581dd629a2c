package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint creates a stable hash for a compiler invocation.
// Any change to the toolchain, flags, output or source list changes it.
func Fingerprint(toolchain string, argv []string) string {
	h := sha256.New()

	h.Write([]byte(toolchain))
	h.Write([]byte{0})

	// NUL separators keep ["-o", "a b"] distinct from ["-o a", "b"]
	for _, arg := range argv {
		h.Write([]byte(arg))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
