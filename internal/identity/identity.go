package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two cart-owning identities.
type Kind int

const (
	KindUser Kind = iota + 1
	KindGuest
)

// Identity is the single key a cart is owned by. Exactly one variant is
// populated; the zero value is invalid and never produced by Resolve.
type Identity struct {
	kind       Kind
	userID     uuid.UUID
	guestToken string
}

// User builds an authenticated-user identity.
func User(id uuid.UUID) Identity {
	return Identity{kind: KindUser, userID: id}
}

// Guest builds a guest-token identity.
func Guest(token string) Identity {
	return Identity{kind: KindGuest, guestToken: token}
}

func (i Identity) Kind() Kind { return i.kind }

// UserID returns the user id and whether this is a user identity.
func (i Identity) UserID() (uuid.UUID, bool) {
	return i.userID, i.kind == KindUser
}

// GuestToken returns the guest token and whether this is a guest identity.
func (i Identity) GuestToken() (string, bool) {
	return i.guestToken, i.kind == KindGuest
}

func (i Identity) String() string {
	switch i.kind {
	case KindUser:
		return "user:" + i.userID.String()
	case KindGuest:
		return "guest:" + i.guestToken
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of identity resolution. Minted is true when a
// fresh guest token was allocated and must be persisted as a cookie by the
// HTTP layer.
type Resolution struct {
	Identity Identity
	Minted   bool
}

// Resolve maps request credentials to exactly one cart key. Precedence:
// authenticated user, then a guest token from the cookie, then one supplied
// in the request body or query, then a freshly minted token. Never fails.
func Resolve(userID uuid.UUID, cookieToken, requestToken string) Resolution {
	if userID != uuid.Nil {
		return Resolution{Identity: User(userID)}
	}
	if token := strings.TrimSpace(cookieToken); token != "" {
		return Resolution{Identity: Guest(token)}
	}
	if token := strings.TrimSpace(requestToken); token != "" {
		return Resolution{Identity: Guest(token)}
	}
	return Resolution{Identity: Guest(MintGuestToken()), Minted: true}
}

// MintGuestToken allocates a new guest identity. Resolve is the only caller
// outside tests; nothing else may invent guest tokens.
func MintGuestToken() string {
	return fmt.Sprintf("guest_%d", time.Now().UnixNano())
}
