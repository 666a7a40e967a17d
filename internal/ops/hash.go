package ops

import (
	"crypto/sha256"
	"encoding/hex"
)

// Salt is prefixed to every operation record before hashing
const Salt = "cadmium"

// Hash returns the content fingerprint of op
func Hash(op Operation) Sha {
	h := sha256.New()
	h.Write([]byte(Salt))
	// hash.Hash writes never fail
	_ = WriteOp(h, op)
	return hex.EncodeToString(h.Sum(nil))
}
