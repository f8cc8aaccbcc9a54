// Package engine runs the three-phase valley-free propagation pass over an
// AS graph. All mutable routing state lives in a State overlay so one
// immutable graph can back many concurrent trials.
package engine

import (
	"fmt"
	"net/netip"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/logging"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// Stats counts announcement handling over one propagation run.
type Stats struct {
	Processed int
	Accepted  int
	Rejected  int
}

// State is the per-trial routing state: every AS's Local RIB, the pending
// announcement queues, and the trial's policy assignment. A State belongs to
// one worker at a time; Reset prepares it for the next trial without
// touching the shared graph.
type State struct {
	graph *asgraph.Graph
	log   logging.Logger

	ribs      map[asgraph.ASN]map[netip.Prefix]*route.Route
	pending   map[asgraph.ASN][]*route.Announcement
	overrides map[asgraph.ASN]policy.Policy
	base      policy.Policy

	stats Stats
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log logging.Logger) Option {
	return func(s *State) { s.log = log }
}

// NewState creates an empty routing overlay for the graph.
func NewState(g *asgraph.Graph, opts ...Option) *State {
	s := &State{
		graph:     g,
		log:       logging.NewNopLogger(),
		ribs:      make(map[asgraph.ASN]map[netip.Prefix]*route.Route, g.Len()),
		pending:   make(map[asgraph.ASN][]*route.Announcement),
		overrides: make(map[asgraph.ASN]policy.Policy),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph returns the shared topology the state overlays.
func (s *State) Graph() *asgraph.Graph {
	return s.graph
}

// Reset clears all RIBs, queues, policy overrides and counters so the state
// can serve the next trial. It never reallocates the graph's relationship
// structures and is idempotent.
func (s *State) Reset() {
	clear(s.ribs)
	clear(s.pending)
	clear(s.overrides)
	s.base = nil
	s.stats = Stats{}
}

// SetBasePolicy assigns the policy used by every AS without an override.
func (s *State) SetBasePolicy(p policy.Policy) {
	s.base = p
}

// SetPolicy overrides the policy for a single AS for this trial.
func (s *State) SetPolicy(asn asgraph.ASN, p policy.Policy) {
	s.overrides[asn] = p
}

// PolicyFor returns the policy the given AS runs this trial, or nil.
func (s *State) PolicyFor(asn asgraph.ASN) policy.Policy {
	if p, ok := s.overrides[asn]; ok {
		return p
	}
	return s.base
}

// Seed injects a self-originated route into the origin's queue before the
// first phase runs.
func (s *State) Seed(origin asgraph.ASN, r *route.Route) error {
	if s.graph.AS(origin) == nil {
		return fmt.Errorf("engine: seed origin AS %d not in graph", origin)
	}
	s.pending[origin] = append(s.pending[origin], &route.Announcement{
		From:  origin,
		To:    origin,
		Route: r,
	})
	return nil
}

// Stats returns the announcement counters for the last run.
func (s *State) Stats() Stats {
	return s.stats
}

// Best returns the RIB entry for the exact prefix at the given AS.
func (s *State) Best(asn asgraph.ASN, prefix netip.Prefix) (*route.Route, bool) {
	r, ok := s.ribs[asn][prefix]
	return r, ok
}

// Lookup returns the longest-prefix-match RIB entry covering addr at the
// given AS, the way the AS would actually forward traffic for addr.
func (s *State) Lookup(asn asgraph.ASN, addr netip.Addr) (*route.Route, bool) {
	var best *route.Route
	for prefix, r := range s.ribs[asn] {
		if !prefix.Contains(addr) {
			continue
		}
		if best == nil || prefix.Bits() > best.Prefix.Bits() {
			best = r
		}
	}
	return best, best != nil
}

// RibSize returns the number of RIB entries at the given AS.
func (s *State) RibSize(asn asgraph.ASN) int {
	return len(s.ribs[asn])
}

func (s *State) rib(asn asgraph.ASN) map[netip.Prefix]*route.Route {
	rib, ok := s.ribs[asn]
	if !ok {
		rib = make(map[netip.Prefix]*route.Route)
		s.ribs[asn] = rib
	}
	return rib
}
