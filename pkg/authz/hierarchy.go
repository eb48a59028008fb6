// Package authz makes role-hierarchy authorization decisions over identities
// that the authn middleware has already verified and attached to the request
// context.
package authz

// Hierarchy is an ordered list of role names, lowest privilege first. It is
// built once at startup and never mutated.
type Hierarchy []string

// Index returns the privilege index of role, or -1 when the role is not part
// of the hierarchy. -1 compares below every real index, so an unknown role is
// unauthorized for any requirement.
func (h Hierarchy) Index(role string) int {
	for i, r := range h {
		if r == role {
			return i
		}
	}
	return -1
}

// Allows reports whether a caller holding have may act as required. Equal
// index (exact role match) is sufficient; only a strictly lower index fails.
func (h Hierarchy) Allows(have, required string) bool {
	haveIdx := h.Index(have)
	if haveIdx < 0 {
		return false
	}
	return haveIdx >= h.Index(required)
}
