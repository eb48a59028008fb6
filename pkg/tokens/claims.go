package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified content of a token. It is only ever produced by a
// successful Verify call; nothing else in the codebase constructs one from
// untrusted input. Treat it as immutable once attached to a request.
type Claims struct {
	// Subject is the principal identifier, carried in the "aud" claim.
	Subject string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// Extra holds caller-supplied claims (e.g. "role", "email"). Refresh
	// tokens never have any.
	Extra map[string]any
}

// registered claim names that extra claims may not shadow.
var registeredClaims = map[string]struct{}{
	"aud": {}, "exp": {}, "iat": {}, "nbf": {}, "iss": {}, "sub": {}, "jti": {},
}

// buildPayload assembles the wire claims for signing. Extras go in first so
// the registered claims always win.
func buildPayload(subject string, extra map[string]any, now time.Time, ttl time.Duration) jwt.MapClaims {
	payload := make(jwt.MapClaims, len(extra)+3)
	for k, v := range extra {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		payload[k] = v
	}
	payload["aud"] = subject
	payload["iat"] = jwt.NewNumericDate(now)
	payload["exp"] = jwt.NewNumericDate(now.Add(ttl))
	return payload
}

// claimsFromPayload converts verified wire claims back into a Claims value.
func claimsFromPayload(payload jwt.MapClaims) (Claims, error) {
	aud, err := payload.GetAudience()
	if err != nil || len(aud) == 0 {
		return Claims{}, ErrTokenInvalid
	}

	c := Claims{Subject: aud[0]}

	if iat, err := payload.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := payload.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	for k, v := range payload {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}

	return c, nil
}
