package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/config"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/security"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", fastArgon)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("expected password to verify, got %v (%v)", ok, err)
	}
	ok, err = security.VerifyPassword("wrong-password", hash)
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail, got %v (%v)", ok, err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, _ := security.HashPassword("same", fastArgon)
	b, _ := security.HashPassword("same", fastArgon)
	if a == b {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$c2FsdA$aGFzaA"} {
		if _, err := security.VerifyPassword("pw", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", fastArgon); err == nil {
		t.Fatalf("expected empty password to be rejected")
	}
}

func TestCardLast4(t *testing.T) {
	got, err := security.CardLast4("4242 4242-4242 4242")
	if err != nil || got != "4242" {
		t.Fatalf("expected 4242, got %q (%v)", got, err)
	}
	got, err = security.CardLast4("5555555555554444")
	if err != nil || got != "4444" {
		t.Fatalf("expected 4444, got %q (%v)", got, err)
	}
	for _, bad := range []string{"", "1234", "4242x4242424242", "12345678901234567890"} {
		if _, err := security.CardLast4(bad); !errors.Is(err, security.ErrInvalidCardNumber) {
			t.Fatalf("expected invalid card for %q, got %v", bad, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("pw", fastArgon)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if security.NeedsRehash(hash, fastArgon) {
		t.Fatalf("hash made with current params must not need a rehash")
	}

	stronger := fastArgon
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatalf("changed time cost should require a rehash")
	}
	if !security.NeedsRehash("garbage", fastArgon) {
		t.Fatalf("unparseable hashes should be replaced")
	}
}
