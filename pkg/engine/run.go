package engine

import (
	"net/netip"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/logging"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// Phase processing order. An AS only consumes announcements received through
// the roles of the current phase; anything else stays queued for a later
// phase.
var (
	consumeUp   = map[asgraph.Rel]bool{asgraph.RelOrigin: true, asgraph.RelCustomer: true}
	consumePeer = map[asgraph.Rel]bool{asgraph.RelPeer: true}
	consumeDown = map[asgraph.Rel]bool{asgraph.RelProvider: true}

	exportUp   = map[asgraph.Rel]bool{asgraph.RelProvider: true, asgraph.RelPeer: true}
	exportDown = map[asgraph.Rel]bool{asgraph.RelCustomer: true}
)

// Run executes the three propagation phases once. Convergence needs no
// iteration: the topology is static, policies are stateless per route and no
// withdrawals occur, so rank ordering guarantees every feeder has decided
// before its dependents send.
func (s *State) Run() error {
	if err := s.checkPolicies(); err != nil {
		return err
	}

	ranks := s.graph.Ranks()

	// Phase 1: customer routes climb to providers and spread to peers,
	// lowest rank first so providers see settled customer choices.
	for _, bucket := range ranks {
		for _, asn := range bucket {
			if err := s.processAS(asn, consumeUp, exportUp); err != nil {
				return err
			}
		}
	}

	// Phase 2: peer-learned routes are folded in. They export to customers
	// only, which phase 3 handles, so nothing is sent here.
	for _, bucket := range ranks {
		for _, asn := range bucket {
			if err := s.processAS(asn, consumePeer, nil); err != nil {
				return err
			}
		}
	}

	// Phase 3: best routes flow down the customer cone, highest rank first.
	for i := len(ranks) - 1; i >= 0; i-- {
		for _, asn := range ranks[i] {
			if err := s.processAS(asn, consumeDown, exportDown); err != nil {
				return err
			}
		}
	}

	s.log.Debug("propagation complete",
		logging.Component("engine"),
		logging.Count("processed", s.stats.Processed),
		logging.Count("accepted", s.stats.Accepted),
		logging.Count("rejected", s.stats.Rejected))
	return nil
}

// checkPolicies verifies every AS has a policy before any route moves.
func (s *State) checkPolicies() error {
	if s.base != nil {
		return nil
	}
	for _, asn := range s.graph.ASNs() {
		if _, ok := s.overrides[asn]; !ok {
			return &MissingPolicyError{ASN: asn}
		}
	}
	return nil
}

// processAS drains the AS's queue for the current phase, updates its RIB,
// and exports the resulting best routes through the allowed roles.
func (s *State) processAS(asn asgraph.ASN, consume map[asgraph.Rel]bool, exportTo map[asgraph.Rel]bool) error {
	a := s.graph.AS(asn)
	pol := s.PolicyFor(asn)

	queue := s.pending[asn]
	if len(queue) == 0 && exportTo == nil {
		return nil
	}

	var keep []*route.Announcement
	var byPrefix map[netip.Prefix][]*route.Route
	for _, ann := range queue {
		if !consume[ann.Route.Recv] {
			keep = append(keep, ann)
			continue
		}
		s.stats.Processed++
		r, reason := pol.Import(a, ann)
		if reason != policy.RejectNone {
			s.stats.Rejected++
			continue
		}
		if r.ContainsASN(asn) {
			return &UnexpectedLoopError{ASN: asn, Route: r}
		}
		s.stats.Accepted++
		if byPrefix == nil {
			byPrefix = make(map[netip.Prefix][]*route.Route)
		}
		byPrefix[r.Prefix] = append(byPrefix[r.Prefix], r)
	}
	if len(keep) > 0 {
		s.pending[asn] = keep
	} else {
		delete(s.pending, asn)
	}

	if len(byPrefix) > 0 {
		rib := s.rib(asn)
		for prefix, cands := range byPrefix {
			if cur, ok := rib[prefix]; ok {
				cands = append(cands, cur)
			}
			rib[prefix] = policy.Decide(pol, cands)
		}
	}

	if exportTo == nil {
		return nil
	}
	for _, best := range s.ribs[asn] {
		for _, rel := range pol.ExportTargets(best) {
			if !exportTo[rel] {
				continue
			}
			for _, neighbor := range a.Neighbors(rel) {
				s.pending[neighbor] = append(s.pending[neighbor], &route.Announcement{
					From:  asn,
					To:    neighbor,
					Route: best.Exported(asn, rel.Invert()),
				})
			}
		}
	}
	return nil
}
