package asgraph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTopology is returned when the relationship input is malformed or
// the customer-provider hierarchy contains a cycle. It is fatal: no trial
// may run on such a graph.
var ErrInvalidTopology = errors.New("invalid topology")

// EdgeKind identifies the relationship type of an input edge.
type EdgeKind uint8

const (
	// EdgeProviderCustomer means A is a provider of B.
	EdgeProviderCustomer EdgeKind = iota
	// EdgePeerPeer means A and B are settlement-free peers.
	EdgePeerPeer
)

// Edge is one AS-relationship record from the topology provider.
type Edge struct {
	A    ASN
	B    ASN
	Kind EdgeKind
}

// Graph is the immutable AS-relationship topology. Relationships and ranks
// never change after Build; per-trial routing state lives in engine.State.
type Graph struct {
	nodes map[ASN]*AS
	asns  []ASN // sorted
	ranks [][]ASN

	stubs      []ASN
	multihomed []ASN
	transit    []ASN
	tier1      []ASN
}

// Option configures graph construction.
type Option func(*buildOptions)

type buildOptions struct {
	tier1 map[ASN]bool
	ixps  map[ASN]bool
}

// WithTier1 marks the given ASNs as members of the tier-1 clique.
func WithTier1(asns []ASN) Option {
	return func(o *buildOptions) {
		for _, asn := range asns {
			o.tier1[asn] = true
		}
	}
}

// WithIXPs marks the given ASNs as IXP route servers.
func WithIXPs(asns []ASN) Option {
	return func(o *buildOptions) {
		for _, asn := range asns {
			o.ixps[asn] = true
		}
	}
}

// Build constructs the graph from a relationship edge list, enforces the
// symmetry and single-role invariants, rejects customer-provider cycles,
// and assigns every AS its propagation rank.
func Build(edges []Edge, opts ...Option) (*Graph, error) {
	o := &buildOptions{tier1: make(map[ASN]bool), ixps: make(map[ASN]bool)}
	for _, opt := range opts {
		opt(o)
	}

	g := &Graph{nodes: make(map[ASN]*AS)}

	// Each unordered pair may appear in exactly one relationship role.
	type pair struct{ lo, hi ASN }
	seen := make(map[pair]EdgeKind)

	node := func(asn ASN) *AS {
		a, ok := g.nodes[asn]
		if !ok {
			a = &AS{ASN: asn, Tier1: o.tier1[asn], IXP: o.ixps[asn]}
			g.nodes[asn] = a
		}
		return a
	}

	for _, e := range edges {
		if e.A == e.B {
			return nil, fmt.Errorf("%w: self relationship for AS %d", ErrInvalidTopology, e.A)
		}
		p := pair{e.A, e.B}
		if p.lo > p.hi {
			p.lo, p.hi = p.hi, p.lo
		}
		if kind, dup := seen[p]; dup {
			if kind != e.Kind {
				return nil, fmt.Errorf("%w: AS %d and AS %d appear in more than one relationship role",
					ErrInvalidTopology, e.A, e.B)
			}
			continue // exact duplicate record, ignore
		}
		seen[p] = e.Kind

		a, b := node(e.A), node(e.B)
		switch e.Kind {
		case EdgeProviderCustomer:
			a.Customers = append(a.Customers, e.B)
			b.Providers = append(b.Providers, e.A)
		case EdgePeerPeer:
			a.Peers = append(a.Peers, e.B)
			b.Peers = append(b.Peers, e.A)
		default:
			return nil, fmt.Errorf("%w: unknown edge kind %d", ErrInvalidTopology, e.Kind)
		}
	}

	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("%w: empty edge list", ErrInvalidTopology)
	}

	g.asns = make([]ASN, 0, len(g.nodes))
	for asn, a := range g.nodes {
		sortASNs(a.Providers)
		sortASNs(a.Customers)
		sortASNs(a.Peers)
		g.asns = append(g.asns, asn)
	}
	sortASNs(g.asns)

	if err := g.checkProviderCycles(); err != nil {
		return nil, err
	}
	g.assignRanks()
	g.buildGroups()
	return g, nil
}

// AS returns the node for the given ASN, or nil if it is not in the graph.
func (g *Graph) AS(asn ASN) *AS {
	return g.nodes[asn]
}

// Len returns the number of ASes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// ASNs returns all ASNs in ascending order. Callers must not modify it.
func (g *Graph) ASNs() []ASN {
	return g.asns
}

// Ranks returns the propagation-rank buckets, index 0 holding the stubs.
// Each bucket is sorted by ASN. Callers must not modify it.
func (g *Graph) Ranks() [][]ASN {
	return g.ranks
}

// Stubs returns ASNs with no customers, ascending.
func (g *Graph) Stubs() []ASN { return g.stubs }

// Multihomed returns stub ASNs with more than one upstream, ascending.
func (g *Graph) Multihomed() []ASN { return g.multihomed }

// Transit returns ASNs with at least one customer, ascending.
func (g *Graph) Transit() []ASN { return g.transit }

// Tier1 returns ASNs marked as tier-1, ascending.
func (g *Graph) Tier1() []ASN { return g.tier1 }

// checkProviderCycles rejects graphs where the customer-provider hierarchy
// is not a DAG. Uses DFS with three-color marking: a GRAY node reached
// again over a customer->provider edge is a back edge, hence a cycle.
// Peer edges are exempt.
func (g *Graph) checkProviderCycles() error {
	const (
		white = 0 // unvisited
		gray  = 1 // in recursion stack
		black = 2 // finished
	)

	color := make(map[ASN]int, len(g.nodes))

	// Iterative DFS; CAIDA-scale graphs are too deep for recursion.
	type frame struct {
		asn  ASN
		next int
	}
	for _, start := range g.asns {
		if color[start] != white {
			continue
		}
		stack := []frame{{asn: start}}
		color[start] = gray
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			providers := g.nodes[f.asn].Providers
			if f.next >= len(providers) {
				color[f.asn] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := providers[f.next]
			f.next++
			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, frame{asn: next})
			case gray:
				return fmt.Errorf("%w: customer-provider cycle through AS %d", ErrInvalidTopology, next)
			}
		}
	}
	return nil
}

// assignRanks computes propagation ranks bottom-up: stubs get rank 0, and
// every other AS gets 1 + max(rank of customers). This is Kahn's algorithm
// over the customer->provider DAG, so it terminates because
// checkProviderCycles already ran.
func (g *Graph) assignRanks() {
	pending := make(map[ASN]int, len(g.nodes)) // unranked customer count
	frontier := make([]ASN, 0)

	for _, asn := range g.asns {
		n := len(g.nodes[asn].Customers)
		pending[asn] = n
		if n == 0 {
			frontier = append(frontier, asn)
		}
	}

	for len(frontier) > 0 {
		sortASNs(frontier)
		g.ranks = append(g.ranks, frontier)
		rank := len(g.ranks) - 1

		var next []ASN
		for _, asn := range frontier {
			a := g.nodes[asn]
			a.Rank = rank
			for _, provider := range a.Providers {
				pending[provider]--
				if pending[provider] == 0 {
					next = append(next, provider)
				}
			}
		}
		frontier = next
	}
}

func (g *Graph) buildGroups() {
	for _, asn := range g.asns {
		a := g.nodes[asn]
		if a.IsStub() {
			g.stubs = append(g.stubs, asn)
		}
		if a.IsMultihomed() {
			g.multihomed = append(g.multihomed, asn)
		}
		if a.IsTransit() {
			g.transit = append(g.transit, asn)
		}
		if a.Tier1 {
			g.tier1 = append(g.tier1, asn)
		}
	}
}

func sortASNs(asns []ASN) {
	sort.Slice(asns, func(i, j int) bool { return asns[i] < asns[j] })
}
