package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// OnlyToCustomers implements the RFC 9234 route-leak defense. Routes
// received from a peer or provider are marked only-to-customers on ingress;
// a marked route arriving from a customer or peer is a leak and is dropped;
// a marked route is never exported toward a peer or provider.
type OnlyToCustomers struct {
	BGP
}

// NewOnlyToCustomers creates the OTC policy.
func NewOnlyToCustomers() *OnlyToCustomers {
	return &OnlyToCustomers{}
}

// Name returns the policy name.
func (p *OnlyToCustomers) Name() string {
	return "OnlyToCustomers"
}

// Import drops leaked routes and marks peer/provider-learned ones.
func (p *OnlyToCustomers) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	if r.Attrs.OnlyToCustomers {
		switch r.Recv {
		case asgraph.RelCustomer, asgraph.RelPeer:
			return nil, RejectRouteLeak
		}
	}
	switch r.Recv {
	case asgraph.RelPeer, asgraph.RelProvider:
		r.Attrs.OnlyToCustomers = true
	}
	return r, RejectNone
}

// ExportTargets suppresses everything but customer links once the
// only-to-customers attribute is set.
func (p *OnlyToCustomers) ExportTargets(r *route.Route) []asgraph.Rel {
	if r.Attrs.OnlyToCustomers {
		return exportCustomers
	}
	return valleyFreeTargets(r.Recv)
}
