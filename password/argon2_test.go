package password

import (
	"errors"
	"strings"
	"testing"
)

// testParams keeps argon2 cheap in tests.
var testParams = Params{MemoryKB: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery", testParams)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("hash = %q, not a PHC argon2id string", hash)
	}

	ok, err := Verify("correct horse battery", hash)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %t, %v", ok, err)
	}
	ok, err = Verify("wrong password", hash)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %t, %v", ok, err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$%%%$aGFzaA",
	} {
		if _, err := Verify("x", h); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify with %q = %v, want ErrMalformedHash", h, err)
		}
	}
}

func TestHashRejectsWeakParams(t *testing.T) {
	weak := testParams
	weak.MemoryKB = 1024
	if _, err := Hash("x", weak); !errors.Is(err, ErrWeakParams) {
		t.Fatalf("Hash with weak params = %v, want ErrWeakParams", err)
	}
}
