// Package policy implements the per-AS routing policy variants dispatched by
// the propagation engine: plain BGP, the ROV family, ASPA, path-end
// validation, RFC 9234 only-to-customers, and filter add-ons, composable as
// an ordered check chain.
package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// RejectReason says why Import refused an announcement. RejectNone means the
// announcement was accepted. Rejection is normal control flow, not an error.
type RejectReason uint8

const (
	RejectNone RejectReason = iota
	RejectLoop
	RejectEmptyPath
	RejectROAInvalid
	RejectROAUnknown
	RejectASPAInvalid
	RejectPathEndInvalid
	RejectRouteLeak
	RejectFirstASMismatch
	RejectTier1InCustomerPath
)

// String returns the string representation of a reject reason
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "ACCEPTED"
	case RejectLoop:
		return "LOOP"
	case RejectEmptyPath:
		return "EMPTY_PATH"
	case RejectROAInvalid:
		return "ROA_INVALID"
	case RejectROAUnknown:
		return "ROA_UNKNOWN"
	case RejectASPAInvalid:
		return "ASPA_INVALID"
	case RejectPathEndInvalid:
		return "PATH_END_INVALID"
	case RejectRouteLeak:
		return "ROUTE_LEAK"
	case RejectFirstASMismatch:
		return "FIRST_AS_MISMATCH"
	case RejectTier1InCustomerPath:
		return "TIER1_IN_CUSTOMER_PATH"
	default:
		return "UNKNOWN"
	}
}

// Policy is the per-AS routing behavior. The engine invokes Import on every
// received announcement, Decide over the surviving candidates per prefix,
// and ExportTargets on the chosen best route.
//
// Implementations must be stateless per route so one Policy value can serve
// many ASes across concurrent trials.
type Policy interface {
	Name() string

	// Import validates the announcement for the receiving AS. On accept it
	// returns the RIB candidate, possibly with updated security attributes;
	// the announcement's route is owned by the receiver and may be mutated
	// in place. On reject it returns nil and the reason.
	Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason)

	// PreferenceClass ranks a route before relationship preference is
	// consulted; lower is better. Variants that treat their validity signal
	// as a hard import filter return 0 for everything.
	PreferenceClass(r *route.Route) int

	// ExportTargets returns the relationship roles the route may be exported
	// to, after valley-free and variant-specific suppression.
	ExportTargets(r *route.Route) []asgraph.Rel
}

// Shared target sets; callers must not modify.
var (
	exportAll       = []asgraph.Rel{asgraph.RelCustomer, asgraph.RelPeer, asgraph.RelProvider}
	exportCustomers = []asgraph.Rel{asgraph.RelCustomer}
)

// valleyFreeTargets implements the Gao-Rexford export rule: routes learned
// from a customer or self-originated go everywhere, routes learned from a
// peer or provider go to customers only.
func valleyFreeTargets(recv asgraph.Rel) []asgraph.Rel {
	switch recv {
	case asgraph.RelCustomer, asgraph.RelOrigin:
		return exportAll
	default:
		return exportCustomers
	}
}

// Decide picks the single best route from a non-empty candidate set for one
// prefix. The order is total: preference class, then received relationship
// (self-originated, then customer, peer, provider), then shorter AS path,
// then lower origin ASN, then lower immediate-sender ASN. No ties remain
// after the last level because a RIB holds at most one route per (prefix,
// sender) pair.
func Decide(p Policy, candidates []*route.Route) *route.Route {
	var best *route.Route
	for _, c := range candidates {
		if best == nil || Better(p, c, best) {
			best = c
		}
	}
	return best
}

// Better reports whether a beats b under p's decision order.
func Better(p Policy, a, b *route.Route) bool {
	if ca, cb := p.PreferenceClass(a), p.PreferenceClass(b); ca != cb {
		return ca < cb
	}
	// Rel values are ordered so that a larger value is more preferred.
	if a.Recv != b.Recv {
		return a.Recv > b.Recv
	}
	if la, lb := a.PathLen(), b.PathLen(); la != lb {
		return la < lb
	}
	if a.OriginASN != b.OriginASN {
		return a.OriginASN < b.OriginASN
	}
	return a.NextHop < b.NextHop
}
