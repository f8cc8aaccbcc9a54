// Package rpki holds the registry snapshots consumed read-only by policy
// variants: route-origin authorizations (ROAs), ASPA provider
// authorizations, and path-end attestation records. How the snapshots are
// obtained is out of scope; the simulator only evaluates them.
package rpki

import (
	"net/netip"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
)

// Validity is the outcome of route-origin validation against the ROA set.
// Lower values are better; Valid beats Unknown beats the invalid states.
type Validity uint8

const (
	Valid Validity = iota
	Unknown
	InvalidLength
	InvalidOrigin
	InvalidLengthAndOrigin
)

// String returns the string representation of a validity state
func (v Validity) String() string {
	switch v {
	case Valid:
		return "VALID"
	case Unknown:
		return "UNKNOWN"
	case InvalidLength:
		return "INVALID_LENGTH"
	case InvalidOrigin:
		return "INVALID_ORIGIN"
	case InvalidLengthAndOrigin:
		return "INVALID_LENGTH_AND_ORIGIN"
	default:
		return "UNKNOWN"
	}
}

// IsInvalid reports whether the validity is any of the invalid states.
func (v Validity) IsInvalid() bool {
	return v >= InvalidLength
}

// ROA is a route-origin authorization: the given origin may announce the
// covered prefix up to MaxLength bits. Origin 0 is a non-routed ROA (AS0).
type ROA struct {
	Prefix    netip.Prefix
	Origin    asgraph.ASN
	MaxLength int
}

// NewROA creates a ROA. A maxLength of 0 defaults to the prefix length,
// which forbids any more-specific announcement.
func NewROA(prefix netip.Prefix, origin asgraph.ASN, maxLength int) ROA {
	if maxLength == 0 {
		maxLength = prefix.Bits()
	}
	return ROA{Prefix: prefix, Origin: origin, MaxLength: maxLength}
}

// Covers reports whether the ROA's prefix covers the announced prefix:
// same address family, containment, and the announcement is at least as
// specific as the ROA prefix.
func (r ROA) Covers(prefix netip.Prefix) bool {
	if r.Prefix.Addr().Is4() != prefix.Addr().Is4() {
		return false
	}
	return r.Prefix.Bits() <= prefix.Bits() && r.Prefix.Contains(prefix.Addr())
}

// Validity evaluates the announced (prefix, origin) pair against this ROA.
// A non-covering ROA yields Unknown.
func (r ROA) Validity(prefix netip.Prefix, origin asgraph.ASN) Validity {
	if !r.Covers(prefix) {
		return Unknown
	}

	validLength := prefix.Bits() <= r.MaxLength
	validOrigin := r.Origin == origin

	switch {
	case validLength && validOrigin:
		return Valid
	case validOrigin:
		return InvalidLength
	case validLength:
		return InvalidOrigin
	default:
		return InvalidLengthAndOrigin
	}
}
