package policy

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// PathEnd validates the last mile of the AS path: when the origin has
// published a path-end record, the AS adjacent to it in the path must be one
// of its attested neighbors. Origins without a record pass unchecked.
type PathEnd struct {
	BGP
	registry *rpki.PathEndRegistry
}

// NewPathEnd creates a path-end policy backed by the given registry.
func NewPathEnd(reg *rpki.PathEndRegistry) *PathEnd {
	return &PathEnd{registry: reg}
}

// Name returns the policy name.
func (p *PathEnd) Name() string {
	return "PathEnd"
}

// Import rejects announcements whose last-mile AS pair is not attested.
func (p *PathEnd) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r, reason := p.BGP.Import(recv, ann)
	if reason != RejectNone {
		return nil, reason
	}
	if r.Recv == asgraph.RelOrigin {
		return r, RejectNone
	}
	if !p.registry.HasRecord(r.OriginASN) {
		r.Attrs.PathEnd = route.AuthUnknown
		return r, RejectNone
	}

	// A single-element path means we receive from the origin directly; the
	// last mile is the link we observe, nothing left to attest.
	n := r.PathLen()
	if n < 2 {
		r.Attrs.PathEnd = route.AuthValid
		return r, RejectNone
	}
	if !p.registry.Attested(r.OriginASN, r.Path[n-2]) {
		r.Attrs.PathEnd = route.AuthInvalid
		return nil, RejectPathEndInvalid
	}
	r.Attrs.PathEnd = route.AuthValid
	return r, RejectNone
}
