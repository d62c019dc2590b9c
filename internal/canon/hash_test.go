package canon

import (
	"strings"
	"testing"
)

func TestSHA256Hex_Format(t *testing.T) {
	hash := SHA256Hex([]byte(`{"a":2,"b":1}`))
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
	if hash != strings.ToLower(hash) {
		t.Errorf("hash %s is not lowercase", hash)
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("hash contains non-hex character %q", c)
		}
	}
}

func TestSHA256Hex_KnownDigest(t *testing.T) {
	// SHA-256 of the empty string is a well-known constant.
	if got := SHA256Hex(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("SHA256Hex(nil) = %s", got)
	}
}

func TestSHA256Hex_Deterministic(t *testing.T) {
	data := []byte(`{"club":"7i"}`)
	first := SHA256Hex(data)
	for i := 0; i < 10; i++ {
		if got := SHA256Hex(data); got != first {
			t.Fatalf("iteration %d: hash changed from %s to %s", i, first, got)
		}
	}
}

func TestDefaultCodec(t *testing.T) {
	var codec Codec = DefaultCodec{}

	v := Object{"b": Int(1), "a": Int(2)}
	canonical, err := codec.Canonicalize(v)
	if err != nil {
		t.Fatalf("Canonicalize() failed: %v", err)
	}
	if string(canonical) != `{"a":2,"b":1}` {
		t.Errorf("canonical = %s", canonical)
	}

	direct, _, err := HashValue(v)
	if err != nil {
		t.Fatalf("HashValue() failed: %v", err)
	}
	if got := codec.HashHex(canonical); got != direct {
		t.Errorf("codec hash %s != HashValue hash %s", got, direct)
	}
}
