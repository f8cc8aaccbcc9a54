package policy

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// genRoute builds arbitrary received routes from small attribute spaces so
// collisions in individual decision levels are common and every tie-break
// level gets exercised.
func genRoute() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 4), // received relationship
		gen.IntRange(0, 4), // extra path hops
		gen.IntRange(1, 5), // origin
		gen.IntRange(1, 5), // sender
	).Map(func(vals []interface{}) *route.Route {
		recv := asgraph.Rel(vals[0].(int))
		hops := vals[1].(int)
		origin := asgraph.ASN(vals[2].(int))
		sender := asgraph.ASN(vals[3].(int))

		r := &route.Route{
			Prefix:    testPrefix,
			OriginASN: origin,
			NextHop:   sender,
			Recv:      recv,
		}
		if recv != asgraph.RelOrigin {
			r.Path = append(r.Path, sender)
			for i := 0; i < hops; i++ {
				r.Path = append(r.Path, asgraph.ASN(10+i))
			}
			r.Path = append(r.Path, origin)
		}
		return r
	})
}

type decisionKey struct {
	recv    asgraph.Rel
	pathLen int
	origin  asgraph.ASN
	sender  asgraph.ASN
}

func keyOf(r *route.Route) decisionKey {
	return decisionKey{recv: r.Recv, pathLen: r.PathLen(), origin: r.OriginASN, sender: r.NextHop}
}

// TestDecideTotalOrder verifies the decision process is a strict total order
// over the compared attributes: antisymmetric, total for distinct keys, and
// transitive, so decide always returns exactly one winner.
func TestDecideTotalOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	p := NewBGP()

	properties.Property("antisymmetric and total", prop.ForAll(
		func(a, b *route.Route) bool {
			ab, ba := Better(p, a, b), Better(p, b, a)
			if keyOf(a) == keyOf(b) {
				return !ab && !ba
			}
			return ab != ba
		},
		genRoute(), genRoute(),
	))

	properties.Property("transitive", prop.ForAll(
		func(a, b, c *route.Route) bool {
			if Better(p, a, b) && Better(p, b, c) {
				return Better(p, a, c)
			}
			return true
		},
		genRoute(), genRoute(), genRoute(),
	))

	properties.Property("decide returns a member beating all others", prop.ForAll(
		func(a, b, c *route.Route) bool {
			cands := []*route.Route{a, b, c}
			best := Decide(p, cands)
			found := false
			for _, r := range cands {
				if r == best {
					found = true
				} else if Better(p, r, best) {
					return false
				}
			}
			return found
		},
		genRoute(), genRoute(), genRoute(),
	))

	properties.TestingRun(t)
}
