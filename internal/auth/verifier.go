// Package auth verifies bearer credentials and resolves them to a stable
// user identity. All data access downstream is scoped by that identity.
package auth

import "context"

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Verifier validates a bearer credential and yields the identity it
// represents. Implementations must treat the token as untrusted input.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
