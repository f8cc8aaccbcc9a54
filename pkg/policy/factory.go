package policy

import (
	"fmt"
	"strings"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/rpki"
)

// Deps carries the registries policy variants evaluate. Only the fields a
// requested variant needs must be set.
type Deps struct {
	Validator *rpki.Validator
	ASPA      *rpki.ASPARegistry
	PathEnd   *rpki.PathEndRegistry
	Tier1     []asgraph.ASN
}

// Reset clears every registry that is present, preparing the deps for the
// next trial's records.
func (d Deps) Reset() {
	if d.Validator != nil {
		d.Validator.Reset()
	}
	if d.ASPA != nil {
		d.ASPA.Reset()
	}
	if d.PathEnd != nil {
		d.PathEnd.Reset()
	}
}

// FromSpec builds a policy from its configuration name, or several names
// joined with "+" into a chain. Recognized names: rov, peer_rov, aspa,
// path_end, otc, enforce_first_as, peerlock_lite, bgp.
func FromSpec(spec string, deps Deps) (Policy, error) {
	tokens := strings.Split(spec, "+")
	members := make([]Policy, 0, len(tokens))
	for _, tok := range tokens {
		p, err := fromToken(strings.TrimSpace(tok), deps)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return NewChain(members...), nil
}

func fromToken(tok string, deps Deps) (Policy, error) {
	switch tok {
	case "bgp":
		return NewBGP(), nil
	case "rov":
		if deps.Validator == nil {
			return nil, fmt.Errorf("policy: %s needs a ROA validator", tok)
		}
		return NewROV(deps.Validator), nil
	case "peer_rov":
		if deps.Validator == nil {
			return nil, fmt.Errorf("policy: %s needs a ROA validator", tok)
		}
		return NewPeerROV(deps.Validator), nil
	case "aspa":
		if deps.ASPA == nil {
			return nil, fmt.Errorf("policy: %s needs an ASPA registry", tok)
		}
		return NewASPA(deps.ASPA), nil
	case "path_end":
		if deps.PathEnd == nil {
			return nil, fmt.Errorf("policy: %s needs a path-end registry", tok)
		}
		return NewPathEnd(deps.PathEnd), nil
	case "otc":
		return NewOnlyToCustomers(), nil
	case "enforce_first_as":
		return NewEnforceFirstAS(), nil
	case "peerlock_lite":
		return NewPeerlockLite(deps.Tier1), nil
	default:
		return nil, fmt.Errorf("policy: unknown policy %q", tok)
	}
}
