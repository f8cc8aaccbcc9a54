package engine

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/policy"
	"github.com/dd0wney/bgpsim/pkg/route"
)

var prefix24 = netip.MustParsePrefix("10.0.0.0/24")

// fourNode builds: 1 provider of 2 and 3, 2 and 3 peers, 4 customer of 2.
func fourNode(t *testing.T) *asgraph.Graph {
	t.Helper()
	g, err := asgraph.Build([]asgraph.Edge{
		{A: 1, B: 2, Kind: asgraph.EdgeProviderCustomer},
		{A: 1, B: 3, Kind: asgraph.EdgeProviderCustomer},
		{A: 2, B: 3, Kind: asgraph.EdgePeerPeer},
		{A: 2, B: 4, Kind: asgraph.EdgeProviderCustomer},
	})
	require.NoError(t, err)
	return g
}

func seedAt(t *testing.T, s *State, origin asgraph.ASN) {
	t.Helper()
	r := route.NewOriginRoute(prefix24, origin, route.ProvenanceVictim)
	require.NoError(t, s.Seed(origin, r))
}

func TestRunRequiresPolicies(t *testing.T) {
	s := NewState(fourNode(t))
	seedAt(t, s, 1)

	err := s.Run()
	var mpe *MissingPolicyError
	require.ErrorAs(t, err, &mpe)

	// Partial assignment is still missing policies.
	s.SetPolicy(1, policy.NewBGP())
	err = s.Run()
	require.ErrorAs(t, err, &mpe)
	assert.NotEqual(t, asgraph.ASN(1), mpe.ASN)
}

func TestSeedRejectsUnknownOrigin(t *testing.T) {
	s := NewState(fourNode(t))
	r := route.NewOriginRoute(prefix24, 999, route.ProvenanceVictim)
	assert.Error(t, s.Seed(999, r))
}

func TestPropagationReachesWholeGraph(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	require.NoError(t, s.Run())

	// Everyone holds the prefix with a path matching graph distance.
	own, ok := s.Best(1, prefix24)
	require.True(t, ok)
	assert.Equal(t, 0, own.PathLen())

	viaB, ok := s.Best(2, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{1}, viaB.Path)
	assert.Equal(t, asgraph.RelProvider, viaB.Recv)

	viaC, ok := s.Best(3, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{1}, viaC.Path)

	viaD, ok := s.Best(4, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{2, 1}, viaD.Path)
}

func TestCustomerRouteClimbsAndSpreads(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 4)
	require.NoError(t, s.Run())

	// 4's route climbs through 2 to 1, and 2 hands it to its peer 3.
	via2, ok := s.Best(2, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{4}, via2.Path)
	assert.Equal(t, asgraph.RelCustomer, via2.Recv)

	via1, ok := s.Best(1, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{2, 4}, via1.Path)

	via3, ok := s.Best(3, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{2, 4}, via3.Path)
	assert.Equal(t, asgraph.RelPeer, via3.Recv)
}

func TestPeerRoutePreferredOverProvider(t *testing.T) {
	// 1 and 3 both originate; 2 hears 3 over the peer link and 1 over the
	// provider link and must keep the peer route.
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	require.NoError(t, s.Seed(3, route.NewOriginRoute(prefix24, 3, route.ProvenanceAttacker)))
	require.NoError(t, s.Run())

	at2, ok := s.Best(2, prefix24)
	require.True(t, ok)
	assert.Equal(t, asgraph.RelPeer, at2.Recv)
	assert.Equal(t, []asgraph.ASN{3}, at2.Path)
}

func TestNoValleyExport(t *testing.T) {
	// A route seeded at 3 reaches 2 over the peer link; 2 must not pass it
	// up to its provider 1, so 1 only knows the path over its own customer 3.
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 3)
	require.NoError(t, s.Run())

	at1, ok := s.Best(1, prefix24)
	require.True(t, ok)
	assert.Equal(t, []asgraph.ASN{3}, at1.Path)
	assert.Equal(t, asgraph.RelCustomer, at1.Recv)
}

func TestRibsAreLoopFree(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	seedAt(t, s, 4)
	require.NoError(t, s.Run())

	for asn, rib := range s.ribs {
		for _, r := range rib {
			assert.False(t, r.ContainsASN(asn), "AS %d holds looping route %s", asn, r)
		}
	}
}

func TestLookupLongestPrefixMatch(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	sub := netip.MustParsePrefix("10.0.0.0/25")
	require.NoError(t, s.Seed(3, route.NewOriginRoute(sub, 3, route.ProvenanceAttacker)))
	require.NoError(t, s.Run())

	r, ok := s.Lookup(4, netip.MustParseAddr("10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, sub, r.Prefix)

	// An address in the /24 but outside the /25 falls back to the victim.
	r, ok = s.Lookup(4, netip.MustParseAddr("10.0.0.129"))
	require.True(t, ok)
	assert.Equal(t, prefix24, r.Prefix)

	_, ok = s.Lookup(4, netip.MustParseAddr("192.0.2.1"))
	assert.False(t, ok)
}

func TestResetClearsStateAndIsIdempotent(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	require.NoError(t, s.Run())
	require.NotZero(t, s.RibSize(4))

	s.Reset()
	assert.Zero(t, s.RibSize(4))
	assert.Empty(t, s.ribs)
	assert.Empty(t, s.pending)
	assert.Nil(t, s.PolicyFor(1))
	assert.Zero(t, s.Stats())

	s.Reset()
	assert.Empty(t, s.ribs)

	// The state is fully reusable after a reset.
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	require.NoError(t, s.Run())
	assert.NotZero(t, s.RibSize(4))
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() map[asgraph.ASN][]asgraph.ASN {
		s := NewState(fourNode(t))
		s.SetBasePolicy(policy.NewBGP())
		seedAt(t, s, 1)
		require.NoError(t, s.Seed(3, route.NewOriginRoute(prefix24, 3, route.ProvenanceAttacker)))
		require.NoError(t, s.Run())

		paths := make(map[asgraph.ASN][]asgraph.ASN)
		for _, asn := range s.Graph().ASNs() {
			if r, ok := s.Best(asn, prefix24); ok {
				paths[asn] = r.Path
			}
		}
		return paths
	}

	first := run()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, run())
	}
}

func TestStatsCountVerdicts(t *testing.T) {
	s := NewState(fourNode(t))
	s.SetBasePolicy(policy.NewBGP())
	seedAt(t, s, 1)
	require.NoError(t, s.Run())

	stats := s.Stats()
	assert.Equal(t, stats.Processed, stats.Accepted+stats.Rejected)
	assert.NotZero(t, stats.Accepted)
}
