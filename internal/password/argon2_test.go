package password

import (
	"errors"
	"strings"
	"testing"
)

var testParams = Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("segredo", testParams)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	if err := Verify(hash, "segredo"); err != nil {
		t.Fatalf("Verify returned error for correct secret: %v", err)
	}
	if err := Verify(hash, "errado"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}

	other, err := Hash("segredo", testParams)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if other == hash {
		t.Fatalf("salts should differ between hashes")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	cases := []struct {
		hash string
		want error
	}{
		{hash: "", want: ErrInvalidHash},
		{hash: "plain", want: ErrInvalidHash},
		{hash: "$bcrypt$v=19$m=1,t=1,p=1$a$b", want: ErrInvalidHash},
		{hash: "$argon2id$v=18$m=1,t=1,p=1$YWJj$YWJj", want: ErrIncompatibleVersion},
		{hash: "$argon2id$v=19$m=x,t=1,p=1$YWJj$YWJj", want: ErrInvalidHash},
		{hash: "$argon2id$v=19$m=1,t=1,p=1$***$YWJj", want: ErrInvalidHash},
	}
	for _, tc := range cases {
		if err := Verify(tc.hash, "secret"); !errors.Is(err, tc.want) {
			t.Fatalf("Verify(%q) = %v, want %v", tc.hash, err, tc.want)
		}
	}
}
