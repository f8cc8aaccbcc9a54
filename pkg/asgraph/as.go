// Package asgraph models the AS-level topology of the inter-domain routing
// system: an arena of AS nodes indexed by ASN, with business relationships
// (provider, customer, peer) stored as sorted ASN slices rather than
// pointers, so the cyclic adjacency never creates ownership problems.
package asgraph

import "sort"

// ASN is an Autonomous System number.
type ASN uint32

// Rel identifies the business relationship through which a route is
// received or exported.
type Rel uint8

const (
	RelUnknown Rel = iota
	// RelProvider means the neighbor is a provider of this AS.
	RelProvider
	// RelPeer means the neighbor is a settlement-free peer.
	RelPeer
	// RelCustomer means the neighbor is a customer of this AS.
	RelCustomer
	// RelOrigin marks a self-originated route; it has no neighbor.
	RelOrigin
)

// String returns the string representation of a relationship
func (r Rel) String() string {
	switch r {
	case RelProvider:
		return "PROVIDER"
	case RelPeer:
		return "PEER"
	case RelCustomer:
		return "CUSTOMER"
	case RelOrigin:
		return "ORIGIN"
	default:
		return "UNKNOWN"
	}
}

// Invert flips the relationship to the other side of the link: a route
// exported toward a customer arrives over the customer's provider link.
func (r Rel) Invert() Rel {
	switch r {
	case RelProvider:
		return RelCustomer
	case RelCustomer:
		return RelProvider
	default:
		return r
	}
}

// AS is a single Autonomous System in the topology. Relationship slices are
// sorted by ASN and immutable after Build; all mutable routing state lives
// outside the graph so one graph can be shared by concurrent trials.
type AS struct {
	ASN       ASN
	Providers []ASN
	Customers []ASN
	Peers     []ASN

	// Tier1 marks members of the input clique of the relationship dataset.
	Tier1 bool
	// IXP marks route servers; they are excluded from attacker/victim placement.
	IXP bool

	// Rank is the propagation depth: 0 for stubs with no customers,
	// 1 + max(customer ranks) otherwise.
	Rank int
}

// Neighbors returns the neighbor set for the given relationship role.
func (a *AS) Neighbors(rel Rel) []ASN {
	switch rel {
	case RelProvider:
		return a.Providers
	case RelPeer:
		return a.Peers
	case RelCustomer:
		return a.Customers
	default:
		return nil
	}
}

// IsStub reports whether the AS has no customers.
func (a *AS) IsStub() bool {
	return len(a.Customers) == 0
}

// IsMultihomed reports whether the AS is a stub with more than one upstream.
func (a *AS) IsMultihomed() bool {
	return len(a.Customers) == 0 && len(a.Providers)+len(a.Peers) > 1
}

// IsTransit reports whether the AS carries traffic for customers.
func (a *AS) IsTransit() bool {
	return len(a.Customers) > 0
}

// RelTo returns the role the given neighbor plays for this AS, or
// RelUnknown if the two ASes are not adjacent.
func (a *AS) RelTo(neighbor ASN) Rel {
	if containsASN(a.Customers, neighbor) {
		return RelCustomer
	}
	if containsASN(a.Peers, neighbor) {
		return RelPeer
	}
	if containsASN(a.Providers, neighbor) {
		return RelProvider
	}
	return RelUnknown
}

// IsNeighbor reports whether the given ASN is adjacent in any role.
func (a *AS) IsNeighbor(asn ASN) bool {
	return a.RelTo(asn) != RelUnknown
}

// containsASN does a binary search over a sorted ASN slice.
func containsASN(sorted []ASN, asn ASN) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= asn })
	return i < len(sorted) && sorted[i] == asn
}
