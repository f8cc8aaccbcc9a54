// Package route defines the unit of routing information exchanged during
// propagation: the Route stored per prefix in a Local RIB, and the
// Announcement carrying a Route across one AS boundary.
package route

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// Provenance tags which seeded announcement a route descends from. It is
// copied unchanged on every export, so classification works even for
// attacks that spoof the victim's origin ASN.
type Provenance uint8

const (
	ProvenanceNone Provenance = iota
	ProvenanceVictim
	ProvenanceAttacker
)

// String returns the string representation of a provenance tag
func (p Provenance) String() string {
	switch p {
	case ProvenanceVictim:
		return "VICTIM"
	case ProvenanceAttacker:
		return "ATTACKER"
	default:
		return "NONE"
	}
}

// AuthResult is the tri-state outcome of a path-level check.
type AuthResult uint8

const (
	AuthUnknown AuthResult = iota
	AuthValid
	AuthInvalid
)

// Attrs is the bag of security attributes attached or updated by policies
// as the route crosses AS boundaries.
type Attrs struct {
	// ROAValidity is the origin-validation state, recorded by ROV-family
	// policies at import.
	ROAValidity rpki.Validity
	// PathAuthorized is the ASPA chain verification state.
	PathAuthorized AuthResult
	// PathEnd is the last-mile attestation state.
	PathEnd AuthResult
	// OnlyToCustomers is the RFC 9234 no-export marker: once set, the route
	// must never be exported toward a peer or provider again.
	OnlyToCustomers bool
}

// Route is the information stored per prefix in a Local RIB. Path holds the
// ASNs the route traversed, most recent first; it never contains the ASN of
// the AS whose RIB it sits in. A self-originated route has an empty Path.
type Route struct {
	Prefix netip.Prefix
	Path   []asgraph.ASN
	// OriginASN is the AS the route claims originated it. For spoofed-origin
	// attacks this differs from the seeding AS; Provenance tracks the truth.
	OriginASN asgraph.ASN
	// NextHop is the neighbor the route was received from; equal to
	// OriginASN for self-originated routes.
	NextHop asgraph.ASN
	// Recv is the relationship role the route was received through.
	Recv asgraph.Rel

	Provenance Provenance
	Attrs      Attrs
}

// NewOriginRoute creates a self-originated route seeded into an AS's RIB
// before propagation begins.
func NewOriginRoute(prefix netip.Prefix, origin asgraph.ASN, provenance Provenance) *Route {
	return &Route{
		Prefix:     prefix,
		OriginASN:  origin,
		NextHop:    origin,
		Recv:       asgraph.RelOrigin,
		Provenance: provenance,
	}
}

// Origin returns the origin ASN the route claims.
func (r *Route) Origin() asgraph.ASN {
	return r.OriginASN
}

// PathLen returns the AS-path length (hop count from the RIB owner to the
// origin; 0 for self-originated routes).
func (r *Route) PathLen() int {
	return len(r.Path)
}

// ContainsASN reports whether asn appears anywhere in the AS path.
func (r *Route) ContainsASN(asn asgraph.ASN) bool {
	return slices.Contains(r.Path, asn)
}

// Clone returns a deep copy of the route.
func (r *Route) Clone() *Route {
	c := *r
	c.Path = slices.Clone(r.Path)
	return &c
}

// Exported builds the route as it appears on the wire when sender exports
// it: the sender is prepended to the path, becomes the next hop, and the
// receiver sees it through recvRel. Security attributes travel with it.
func (r *Route) Exported(sender asgraph.ASN, recvRel asgraph.Rel) *Route {
	c := *r
	c.Path = make([]asgraph.ASN, 0, len(r.Path)+1)
	c.Path = append(c.Path, sender)
	c.Path = append(c.Path, r.Path...)
	c.NextHop = sender
	c.Recv = recvRel
	return &c
}

// String renders the route for logs and test failures.
func (r *Route) String() string {
	return fmt.Sprintf("%s via AS%d path=%v origin=AS%d (%s)",
		r.Prefix, r.NextHop, r.Path, r.OriginASN, r.Recv)
}

// Announcement is a route in transit from one AS to another during a
// propagation phase. It is ephemeral: consumed by the receiver's import
// step and either discarded or turned into a RIB entry candidate.
type Announcement struct {
	From  asgraph.ASN
	To    asgraph.ASN
	Route *Route
}

// MoreSpecific reports whether a is a strictly more specific prefix than b:
// same address family, contained in b, longer mask.
func MoreSpecific(a, b netip.Prefix) bool {
	if a.Addr().Is4() != b.Addr().Is4() {
		return false
	}
	return a.Bits() > b.Bits() && b.Contains(a.Addr())
}
