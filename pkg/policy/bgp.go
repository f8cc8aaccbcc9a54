package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// BGP is the undefended baseline: loop rejection and valley-free export,
// nothing else. Every other variant embeds it and layers checks on top.
type BGP struct{}

// NewBGP creates the baseline policy.
func NewBGP() *BGP {
	return &BGP{}
}

// Name returns the policy name.
func (p *BGP) Name() string {
	return "BGP"
}

// Import accepts anything that is not a loop. A non-originated route with an
// empty path is malformed and rejected.
func (p *BGP) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r := ann.Route
	if r.Recv != asgraph.RelOrigin && r.PathLen() == 0 {
		return nil, RejectEmptyPath
	}
	if r.ContainsASN(recv.ASN) {
		return nil, RejectLoop
	}
	return r, RejectNone
}

// PreferenceClass is flat for plain BGP.
func (p *BGP) PreferenceClass(r *route.Route) int {
	return 0
}

// ExportTargets applies the valley-free rule.
func (p *BGP) ExportTargets(r *route.Route) []asgraph.Rel {
	return valleyFreeTargets(r.Recv)
}
