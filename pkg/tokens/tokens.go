// Package tokens is the stateless signing and verification engine for access
// and refresh tokens. A Service is configured once with an algorithm family
// and key material and is safe for concurrent use; nothing here touches the
// environment or any global state, so multiple independently configured
// services can coexist in one process.
package tokens

import "errors"

var (
	// ErrSigning means the key material is absent or unusable for the
	// configured algorithm.
	ErrSigning = errors.New("tokens: signing failed")

	// ErrTokenMalformed covers structurally invalid input, including empty
	// tokens.
	ErrTokenMalformed = errors.New("tokens: malformed token")

	// ErrTokenExpired means the signature checked out but exp has passed.
	ErrTokenExpired = errors.New("tokens: token expired")

	// ErrTokenInvalid covers signature failures and every other rejection.
	ErrTokenInvalid = errors.New("tokens: invalid token")
)
