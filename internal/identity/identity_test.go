package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestResolvePrefersAuthenticatedUser(t *testing.T) {
	userID := uuid.New()
	res := Resolve(userID, "guest_123", "guest_456")

	if res.Minted {
		t.Fatal("expected no minted token for an authenticated user")
	}
	got, ok := res.Identity.UserID()
	if !ok || got != userID {
		t.Fatalf("expected user identity %s, got %s", userID, res.Identity)
	}
}

func TestResolvePrefersCookieOverRequestToken(t *testing.T) {
	res := Resolve(uuid.Nil, "guest_cookie", "guest_body")

	token, ok := res.Identity.GuestToken()
	if !ok || token != "guest_cookie" {
		t.Fatalf("expected cookie token, got %s", res.Identity)
	}
	if res.Minted {
		t.Fatal("existing token must not be reported as minted")
	}
}

func TestResolveFallsBackToRequestToken(t *testing.T) {
	res := Resolve(uuid.Nil, "  ", "guest_body")

	token, ok := res.Identity.GuestToken()
	if !ok || token != "guest_body" {
		t.Fatalf("expected body token, got %s", res.Identity)
	}
}

func TestResolveMintsWhenNoIdentityPresent(t *testing.T) {
	res := Resolve(uuid.Nil, "", "")

	if !res.Minted {
		t.Fatal("expected a minted guest token")
	}
	token, ok := res.Identity.GuestToken()
	if !ok || !strings.HasPrefix(token, "guest_") {
		t.Fatalf("expected guest_ prefixed token, got %q", token)
	}
}

func TestMintGuestTokenIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := MintGuestToken()
		if seen[token] {
			t.Fatalf("duplicate guest token %q", token)
		}
		seen[token] = true
	}
}
