package canon

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex computes the SHA-256 digest of data and returns it as a
// 64-character lowercase hex string. Pure: no I/O, no internal state.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashValue canonicalizes v and hashes the canonical bytes.
// This is the write-path composition; read paths must use the stored hash
// and never call this.
func HashValue(v Value) (hash string, canonical []byte, err error) {
	canonical, err = MarshalCanonical(v)
	if err != nil {
		return "", nil, err
	}
	return SHA256Hex(canonical), canonical, nil
}

// Codec is the hashing codec surface the store depends on. It exists as an
// interface so tests can assert call counts: insert paths invoke the codec
// exactly once per logical insert, fetch paths never invoke it.
type Codec interface {
	Canonicalize(v Value) ([]byte, error)
	HashHex(canonical []byte) string
}

// DefaultCodec is the production Codec backed by MarshalCanonical and
// SHA256Hex.
type DefaultCodec struct{}

// Canonicalize implements Codec.
func (DefaultCodec) Canonicalize(v Value) ([]byte, error) {
	return MarshalCanonical(v)
}

// HashHex implements Codec.
func (DefaultCodec) HashHex(canonical []byte) string {
	return SHA256Hex(canonical)
}

// VerifyContent recomputes the content hash of v and reports whether it
// equals hash. This is the tamper-evidence check for hashes received from
// outside the local store: hash equality proves the logical content is
// byte-identical under canonicalization.
func VerifyContent(v Value, hash string) (bool, error) {
	computed, _, err := HashValue(v)
	if err != nil {
		return false, err
	}
	return computed == hash, nil
}
