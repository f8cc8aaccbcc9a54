package scenario

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/netip"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
)

// ErrPoolTooSmall is returned when the placement pool cannot supply distinct
// victim and attacker ASes.
var ErrPoolTooSmall = errors.New("scenario: placement pool too small")

var (
	defaultVictimPrefix = netip.MustParsePrefix("10.0.0.0/24")
	defaultSubPrefix    = netip.MustParsePrefix("10.0.0.0/25")
)

// Generator draws random scenarios of one attack kind against a fixed
// graph. Placement defaults to stub ASes, the usual victims and attackers in
// hijack studies; route servers are never picked. Drawing is deterministic
// given the rng, so trials replay exactly from a seed.
type Generator struct {
	kind Kind

	victimPrefix netip.Prefix
	attackPrefix netip.Prefix

	placement []asgraph.ASN
	adoption  []asgraph.ASN
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithVictimPrefix overrides the prefix the victim originates.
func WithVictimPrefix(p netip.Prefix) GeneratorOption {
	return func(g *Generator) { g.victimPrefix = p }
}

// WithAttackPrefix overrides the prefix the attacker originates.
func WithAttackPrefix(p netip.Prefix) GeneratorOption {
	return func(g *Generator) { g.attackPrefix = p }
}

// WithPlacementPool overrides the ASes eligible as victim or attacker.
func WithPlacementPool(asns []asgraph.ASN) GeneratorOption {
	return func(g *Generator) { g.placement = asns }
}

// WithAdoptionPool overrides the ASes eligible to adopt the defense.
func WithAdoptionPool(asns []asgraph.ASN) GeneratorOption {
	return func(g *Generator) { g.adoption = asns }
}

// NewGenerator creates a generator for the given graph and attack kind.
func NewGenerator(graph *asgraph.Graph, kind Kind, opts ...GeneratorOption) *Generator {
	g := &Generator{
		kind:         kind,
		victimPrefix: defaultVictimPrefix,
	}
	switch kind {
	case KindSubprefixHijack:
		g.attackPrefix = defaultSubPrefix
	case KindPrefixHijack, KindOriginSpoof:
		g.attackPrefix = g.victimPrefix
	}

	g.placement = withoutIXPs(graph, graph.Stubs())
	if len(g.placement) < 2 {
		g.placement = withoutIXPs(graph, graph.ASNs())
	}
	g.adoption = withoutIXPs(graph, graph.ASNs())

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Draw produces one scenario: random victim and attacker placement plus a
// random adopter subset of the given percentage.
func (g *Generator) Draw(rng *rand.Rand, adoptionPercent float64) (*Scenario, error) {
	if adoptionPercent < 0 || adoptionPercent > 100 {
		return nil, fmt.Errorf("scenario: adoption percent %v out of range", adoptionPercent)
	}

	sc := &Scenario{
		Kind:         g.kind,
		VictimPrefix: g.victimPrefix,
		AttackPrefix: g.attackPrefix,
	}

	victim, attacker, err := g.placeActors(rng)
	if err != nil {
		return nil, err
	}
	sc.Victims = []asgraph.ASN{victim}
	if g.kind != KindNoAttack {
		sc.Attackers = []asgraph.ASN{attacker}
	}

	sc.Adopters = g.sampleAdopters(rng, adoptionPercent, sc.Attackers)
	return sc, nil
}

func (g *Generator) placeActors(rng *rand.Rand) (victim, attacker asgraph.ASN, err error) {
	if len(g.placement) == 0 {
		return 0, 0, ErrPoolTooSmall
	}
	victim = g.placement[rng.Intn(len(g.placement))]
	if g.kind == KindNoAttack {
		return victim, 0, nil
	}
	if len(g.placement) < 2 {
		return 0, 0, ErrPoolTooSmall
	}
	for {
		attacker = g.placement[rng.Intn(len(g.placement))]
		if attacker != victim {
			return victim, attacker, nil
		}
	}
}

// sampleAdopters picks round(percent) of the adoption pool via a partial
// Fisher-Yates shuffle, skipping attackers. The result is unsorted; policy
// assignment does not depend on order.
func (g *Generator) sampleAdopters(rng *rand.Rand, percent float64, attackers []asgraph.ASN) []asgraph.ASN {
	excluded := make(map[asgraph.ASN]bool, len(attackers))
	for _, asn := range attackers {
		excluded[asn] = true
	}

	pool := make([]asgraph.ASN, 0, len(g.adoption))
	for _, asn := range g.adoption {
		if !excluded[asn] {
			pool = append(pool, asn)
		}
	}

	k := int(math.Round(percent / 100 * float64(len(pool))))
	if k <= 0 {
		return nil
	}
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func withoutIXPs(graph *asgraph.Graph, asns []asgraph.ASN) []asgraph.ASN {
	out := make([]asgraph.ASN, 0, len(asns))
	for _, asn := range asns {
		if !graph.AS(asn).IXP {
			out = append(out, asn)
		}
	}
	return out
}
