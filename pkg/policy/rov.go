package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// ROV drops announcements whose origin fails route-origin validation.
// Valid and unknown both pass; the validity is recorded on the route so
// downstream policies can see it.
type ROV struct {
	BGP
	validator *rpki.Validator
}

// NewROV creates an ROV policy backed by the given validator.
func NewROV(v *rpki.Validator) *ROV {
	return &ROV{validator: v}
}

// Name returns the policy name.
func (p *ROV) Name() string {
	return "ROV"
}

// Import rejects ROA-invalid announcements after the baseline checks.
func (p *ROV) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	r.Attrs.ROAValidity = p.validator.Outcome(r.Prefix, r.OriginASN)
	if r.Attrs.ROAValidity.IsInvalid() {
		return nil, RejectROAInvalid
	}
	return r, RejectNone
}

// PeerROV is the stricter variant deployed on peering links: ROA-invalid is
// rejected everywhere, and ROA-unknown is additionally rejected when the
// announcement arrives from a peer. Unknown from customers and providers
// still passes, since filtering it there would blackhole most of the table.
type PeerROV struct {
	BGP
	validator *rpki.Validator
}

// NewPeerROV creates a PeerROV policy backed by the given validator.
func NewPeerROV(v *rpki.Validator) *PeerROV {
	return &PeerROV{validator: v}
}

// Name returns the policy name.
func (p *PeerROV) Name() string {
	return "PeerROV"
}

// Import applies the peer-sensitive ROV rules after the baseline checks.
func (p *PeerROV) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	r.Attrs.ROAValidity = p.validator.Outcome(r.Prefix, r.OriginASN)
	switch {
	case r.Attrs.ROAValidity.IsInvalid():
		return nil, RejectROAInvalid
	case r.Attrs.ROAValidity == rpki.Unknown && r.Recv == asgraph.RelPeer:
		return nil, RejectROAUnknown
	}
	return r, RejectNone
}
