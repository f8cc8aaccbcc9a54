// Package scenario builds per-trial attack setups (victim and attacker
// placement, seeded announcements, defense adoption) and classifies the
// outcome at every AS after propagation.
package scenario

import (
	"fmt"
	"net/netip"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/engine"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/route"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// Kind selects the attack shape of a trial.
type Kind uint8

const (
	// KindNoAttack seeds only the victim; the baseline control.
	KindNoAttack Kind = iota
	// KindPrefixHijack has the attacker originate the victim's exact prefix.
	KindPrefixHijack
	// KindSubprefixHijack has the attacker originate a more-specific
	// sub-prefix of the victim's block.
	KindSubprefixHijack
	// KindOriginSpoof has the attacker forge the victim as path origin,
	// defeating origin validation.
	KindOriginSpoof
)

// String returns the string representation of an attack kind
func (k Kind) String() string {
	switch k {
	case KindNoAttack:
		return "no_attack"
	case KindPrefixHijack:
		return "prefix_hijack"
	case KindSubprefixHijack:
		return "subprefix_hijack"
	case KindOriginSpoof:
		return "origin_spoof"
	default:
		return "unknown"
	}
}

// ParseKind converts a configuration name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "no_attack":
		return KindNoAttack, nil
	case "prefix_hijack":
		return KindPrefixHijack, nil
	case "subprefix_hijack":
		return KindSubprefixHijack, nil
	case "origin_spoof":
		return KindOriginSpoof, nil
	default:
		return 0, fmt.Errorf("scenario: unknown attack kind %q", s)
	}
}

// Scenario is one trial's setup: who originates what, and which ASes adopt
// the defense policy. Created fresh per trial and discarded after
// classification.
type Scenario struct {
	Kind Kind

	Victims      []asgraph.ASN
	Attackers    []asgraph.ASN
	VictimPrefix netip.Prefix
	// AttackPrefix is what the attackers originate: equal to VictimPrefix
	// for an exact-prefix hijack, more specific for a sub-prefix hijack.
	// Unset when Kind is KindNoAttack.
	AttackPrefix netip.Prefix

	// Adopters run the defense policy this trial; everyone else runs the
	// base policy. Attackers never adopt.
	Adopters []asgraph.ASN
}

// ProbeAddr returns the address whose forwarding decides the trial: an
// address inside the attacked prefix, or the victim prefix when there is no
// attack.
func (sc *Scenario) ProbeAddr() netip.Addr {
	if sc.Kind == KindNoAttack {
		return sc.VictimPrefix.Addr()
	}
	return sc.AttackPrefix.Addr()
}

// Seed injects the victim and attacker self-originated routes into the
// engine state before the first propagation phase.
func (sc *Scenario) Seed(st *engine.State) error {
	for _, victim := range sc.Victims {
		r := route.NewOriginRoute(sc.VictimPrefix, victim, route.ProvenanceVictim)
		if err := st.Seed(victim, r); err != nil {
			return fmt.Errorf("seeding victim: %w", err)
		}
	}
	if sc.Kind == KindNoAttack {
		return nil
	}
	for _, attacker := range sc.Attackers {
		r := sc.attackRoute(attacker)
		if err := st.Seed(attacker, r); err != nil {
			return fmt.Errorf("seeding attacker: %w", err)
		}
	}
	return nil
}

// attackRoute builds the malicious seed for one attacker. An origin spoof
// claims the victim originated the prefix: the forged origin sits at the
// path's end so the attacker's export reads attacker-then-victim, passing
// origin validation while the provenance tag records the truth.
func (sc *Scenario) attackRoute(attacker asgraph.ASN) *route.Route {
	if sc.Kind == KindOriginSpoof && len(sc.Victims) > 0 {
		victim := sc.Victims[0]
		return &route.Route{
			Prefix:     sc.AttackPrefix,
			Path:       []asgraph.ASN{victim},
			OriginASN:  victim,
			NextHop:    attacker,
			Recv:       asgraph.RelOrigin,
			Provenance: route.ProvenanceAttacker,
		}
	}
	return route.NewOriginRoute(sc.AttackPrefix, attacker, route.ProvenanceAttacker)
}

// Apply installs the trial's policy assignment: base everywhere, defense for
// the adopters.
func (sc *Scenario) Apply(st *engine.State, base, defense policy.Policy) {
	st.SetBasePolicy(base)
	for _, asn := range sc.Adopters {
		st.SetPolicy(asn, defense)
	}
}

// Setup publishes this trial's registry records into the given dependencies:
// the victims' ROAs (max length pinned to the prefix, so any sub-prefix
// announcement validates invalid), ASPA attestations of the real provider
// sets of victims and adopters, and the victims' path-end records. The
// attackers publish nothing.
func (sc *Scenario) Setup(g *asgraph.Graph, deps policy.Deps) {
	if deps.Validator != nil {
		for _, victim := range sc.Victims {
			deps.Validator.AddROA(rpki.NewROA(sc.VictimPrefix, victim, 0))
		}
	}
	if deps.ASPA != nil {
		publishASPA := func(asn asgraph.ASN) {
			if a := g.AS(asn); a != nil && len(a.Providers) > 0 {
				deps.ASPA.Authorize(asn, a.Providers...)
			}
		}
		for _, victim := range sc.Victims {
			publishASPA(victim)
		}
		for _, adopter := range sc.Adopters {
			publishASPA(adopter)
		}
	}
	if deps.PathEnd != nil {
		for _, victim := range sc.Victims {
			a := g.AS(victim)
			if a == nil {
				continue
			}
			deps.PathEnd.Attest(victim, a.Providers...)
			deps.PathEnd.Attest(victim, a.Peers...)
			deps.PathEnd.Attest(victim, a.Customers...)
		}
	}
}
