package scenario

import (
	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/engine"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// Outcome labels where one AS's traffic for the contested prefix ends up.
type Outcome uint8

const (
	VictimWins Outcome = iota
	AttackerWins
	Blackholed
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case VictimWins:
		return "victim_wins"
	case AttackerWins:
		return "attacker_wins"
	case Blackholed:
		return "blackholed"
	default:
		return "unknown"
	}
}

// Outcomes enumerates all labels in a fixed order for reporting.
var Outcomes = []Outcome{VictimWins, AttackerWins, Blackholed}

// Result is one trial's classification: every AS labeled, plus tallies.
type Result struct {
	Outcomes map[asgraph.ASN]Outcome
	Tally    map[Outcome]int
}

// Fraction returns the share of ASes with the given outcome, 0 for an empty
// result.
func (r *Result) Fraction(o Outcome) float64 {
	total := len(r.Outcomes)
	if total == 0 {
		return 0
	}
	return float64(r.Tally[o]) / float64(total)
}

// Classify labels every AS after propagation by resolving the probe address
// through its RIB with longest-prefix-match semantics. The sub-prefix hijack
// is the one case where prefix specificity, not path preference, decides the
// winner, which is why the lookup is by address rather than exact prefix.
// Provenance identifies the winner even when the attacker spoofed the
// victim's origin ASN.
func Classify(st *engine.State, sc *Scenario) *Result {
	res := &Result{
		Outcomes: make(map[asgraph.ASN]Outcome, st.Graph().Len()),
		Tally:    make(map[Outcome]int),
	}
	probe := sc.ProbeAddr()
	for _, asn := range st.Graph().ASNs() {
		outcome := Blackholed
		if r, ok := st.Lookup(asn, probe); ok {
			if r.Provenance == route.ProvenanceAttacker {
				outcome = AttackerWins
			} else {
				outcome = VictimWins
			}
		}
		res.Outcomes[asn] = outcome
		res.Tally[outcome]++
	}
	return res
}
