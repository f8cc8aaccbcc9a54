package policy

import (
	"strings"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// Chain composes several policies into one: an announcement must pass every
// member's Import (logical AND, first rejection wins, attribute updates from
// earlier members are visible to later ones), preference classes add up, and
// export targets are the intersection of all members' targets.
type Chain struct {
	members []Policy
	name    string
}

// NewChain composes the given policies in order. It panics on an empty
// member list since a chain with no checks has no defined behavior.
func NewChain(members ...Policy) *Chain {
	if len(members) == 0 {
		panic("policy: empty chain")
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	return &Chain{members: members, name: strings.Join(names, "+")}
}

// Name returns the member names joined with "+".
func (c *Chain) Name() string {
	return c.name
}

// Import runs every member in order; the first rejection wins.
func (c *Chain) Import(recv *asgraph.AS, ann *route.Announcement) (*route.Route, RejectReason) {
	r := ann.Route
	for _, m := range c.members {
		accepted, reason := m.Import(recv, ann)
		if reason != RejectNone {
			return nil, reason
		}
		r = accepted
		ann.Route = r
	}
	return r, RejectNone
}

// PreferenceClass sums the members' classes so a demotion by any member
// carries through.
func (c *Chain) PreferenceClass(r *route.Route) int {
	total := 0
	for _, m := range c.members {
		total += m.PreferenceClass(r)
	}
	return total
}

// ExportTargets intersects the members' target sets.
func (c *Chain) ExportTargets(r *route.Route) []asgraph.Rel {
	allowed := map[asgraph.Rel]int{}
	for _, m := range c.members {
		for _, rel := range m.ExportTargets(r) {
			allowed[rel]++
		}
	}
	var out []asgraph.Rel
	for _, rel := range exportAll {
		if allowed[rel] == len(c.members) {
			out = append(out, rel)
		}
	}
	return out
}
