package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// ASPA verifies the AS path against provider authorizations. A path received
// from a customer or peer must be a pure up-ramp (every hop from the origin
// upward goes customer to attested provider); a path received from a
// provider may be an up-ramp followed by a down-ramp. Hops through ASes
// without an ASPA record count as authorized, so partial deployment never
// rejects clean paths.
type ASPA struct {
	BGP
	registry *rpki.ASPARegistry
}

// NewASPA creates an ASPA policy backed by the given registry.
func NewASPA(reg *rpki.ASPARegistry) *ASPA {
	return &ASPA{registry: reg}
}

// Name returns the policy name.
func (p *ASPA) Name() string {
	return "ASPA"
}

// Import rejects announcements whose path violates the authorization chain.
func (p *ASPA) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	if r.Recv == asgraph.RelOrigin || r.PathLen() == 0 {
		return r, RejectNone
	}

	// The first path element must be the AS that actually sent the
	// announcement, unless we are a route server that hides itself.
	if r.Path[0] != ann.From && !recv.IXP {
		r.Attrs.PathAuthorized = route.AuthInvalid
		return nil, RejectASPAInvalid
	}

	// rev holds the path origin-first, the direction attestation hops run.
	rev := make([]asgraph.ASN, r.PathLen())
	for i, asn := range r.Path {
		rev[len(rev)-1-i] = asn
	}

	n := len(rev)
	valid := true
	switch r.Recv {
	case asgraph.RelCustomer, asgraph.RelPeer:
		valid = p.maxUpRamp(rev) == n
	case asgraph.RelProvider:
		valid = p.maxUpRamp(rev)+p.maxDownRamp(rev) >= n
	}
	if !valid {
		r.Attrs.PathAuthorized = route.AuthInvalid
		return nil, RejectASPAInvalid
	}

	if p.registry.HasAttestation(r.OriginASN) {
		r.Attrs.PathAuthorized = route.AuthValid
	} else {
		r.Attrs.PathAuthorized = route.AuthUnknown
	}
	return r, RejectNone
}

// maxUpRamp returns the length of the longest prefix of the origin-first
// path where each hop goes from a customer to an authorized provider.
func (p *ASPA) maxUpRamp(rev []asgraph.ASN) int {
	for i := 0; i < len(rev)-1; i++ {
		if !p.registry.HopAuthorized(rev[i], rev[i+1]) {
			return i + 1
		}
	}
	return len(rev)
}

// maxDownRamp returns the length of the longest suffix of the origin-first
// path where each hop goes from a customer up to an authorized provider when
// read from the receiver's side.
func (p *ASPA) maxDownRamp(rev []asgraph.ASN) int {
	for i := len(rev) - 1; i >= 1; i-- {
		if !p.registry.HopAuthorized(rev[i], rev[i-1]) {
			return len(rev) - i
		}
	}
	return len(rev)
}
