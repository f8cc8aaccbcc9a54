package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// EnforceFirstAS drops announcements whose first path element is not the
// neighbor that sent them. Route servers are exempt on the receiving side
// because they forward without prepending themselves.
type EnforceFirstAS struct {
	BGP
}

// NewEnforceFirstAS creates the first-AS filter.
func NewEnforceFirstAS() *EnforceFirstAS {
	return &EnforceFirstAS{}
}

// Name returns the policy name.
func (p *EnforceFirstAS) Name() string {
	return "EnforceFirstAS"
}

// Import rejects spoofed first hops.
func (p *EnforceFirstAS) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	if r.Recv != asgraph.RelOrigin && r.PathLen() > 0 && r.Path[0] != ann.From && !recv.IXP {
		return nil, RejectFirstASMismatch
	}
	return r, RejectNone
}

// PeerlockLite rejects customer-learned routes whose path crosses a tier-1
// AS: a tier-1 has no providers, so it can never legitimately sit below us
// in the customer cone.
type PeerlockLite struct {
	BGP
	tier1 map[asgraph.ASN]bool
}

// NewPeerlockLite creates the filter for the given tier-1 clique.
func NewPeerlockLite(tier1 []asgraph.ASN) *PeerlockLite {
	set := make(map[asgraph.ASN]bool, len(tier1))
	for _, asn := range tier1 {
		set[asn] = true
	}
	return &PeerlockLite{tier1: set}
}

// Name returns the policy name.
func (p *PeerlockLite) Name() string {
	return "PeerlockLite"
}

// Import rejects tier-1 ASNs appearing in customer-received paths.
func (p *PeerlockLite) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	if r.Recv == asgraph.RelCustomer {
		for _, asn := range r.Path {
			if p.tier1[asn] {
				return nil, RejectTier1InCustomerPath
			}
		}
	}
	return r, RejectNone
}
