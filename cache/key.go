package cache

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Key identifies the inputs of a build: its description and the bytes of
// every source file.
type Key [32]byte

// Fingerprint hashes the given parts. Every part is length prefixed, so
// moving bytes between adjacent parts changes the key.
func Fingerprint(parts ...[]byte) Key {
	hasher := blake3.New()
	var prefix []byte
	for _, part := range parts {
		prefix = binary.AppendUvarint(prefix[:0], uint64(len(part)))
		hasher.Write(prefix)
		hasher.Write(part)
	}
	var key Key
	copy(key[:], hasher.Sum(nil))
	return key
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
