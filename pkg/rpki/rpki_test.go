package rpki

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROAValidity(t *testing.T) {
	roa := NewROA(netip.MustParsePrefix("10.0.0.0/24"), 64500, 0)

	assert.Equal(t, Valid, roa.Validity(netip.MustParsePrefix("10.0.0.0/24"), 64500))
	assert.Equal(t, InvalidLength, roa.Validity(netip.MustParsePrefix("10.0.0.0/25"), 64500))
	assert.Equal(t, InvalidOrigin, roa.Validity(netip.MustParsePrefix("10.0.0.0/24"), 64501))
	assert.Equal(t, InvalidLengthAndOrigin, roa.Validity(netip.MustParsePrefix("10.0.0.0/25"), 64501))
	// Prefix outside the ROA's coverage.
	assert.Equal(t, Unknown, roa.Validity(netip.MustParsePrefix("192.0.2.0/24"), 64500))
}

func TestROAMaxLength(t *testing.T) {
	roa := NewROA(netip.MustParsePrefix("10.0.0.0/16"), 64500, 20)
	assert.Equal(t, Valid, roa.Validity(netip.MustParsePrefix("10.0.0.0/20"), 64500))
	assert.Equal(t, InvalidLength, roa.Validity(netip.MustParsePrefix("10.0.0.0/21"), 64500))
}

func TestValidatorUnknownWithoutCoveringROA(t *testing.T) {
	v := NewValidator()
	assert.Equal(t, Unknown, v.Outcome(netip.MustParsePrefix("10.0.0.0/24"), 64500))
}

func TestValidatorBestOverCoveringROAs(t *testing.T) {
	v := NewValidator()
	// A broad ROA for the wrong origin and a specific one for the right one:
	// the best (lowest) validity wins.
	v.AddROA(NewROA(netip.MustParsePrefix("10.0.0.0/16"), 64999, 24))
	v.AddROA(NewROA(netip.MustParsePrefix("10.0.0.0/24"), 64500, 0))

	assert.Equal(t, Valid, v.Outcome(netip.MustParsePrefix("10.0.0.0/24"), 64500))
	assert.Equal(t, Valid, v.Outcome(netip.MustParsePrefix("10.0.0.0/24"), 64999))
	assert.True(t, v.Outcome(netip.MustParsePrefix("10.0.0.0/25"), 64500).IsInvalid())
}

func TestValidatorSingleInvalidROA(t *testing.T) {
	v := NewValidator()
	v.AddROA(NewROA(netip.MustParsePrefix("10.0.0.0/24"), 64500, 0))
	assert.Equal(t, InvalidOrigin, v.Outcome(netip.MustParsePrefix("10.0.0.0/24"), 64666))
}

func TestValidatorCacheInvalidatedByAddROA(t *testing.T) {
	v := NewValidator()
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	require.Equal(t, Unknown, v.Outcome(prefix, 64500))

	v.AddROA(NewROA(prefix, 64500, 0))
	assert.Equal(t, Valid, v.Outcome(prefix, 64500))
}

func TestValidatorReset(t *testing.T) {
	v := NewValidator()
	prefix := netip.MustParsePrefix("10.0.0.0/24")
	v.AddROA(NewROA(prefix, 64500, 0))
	require.Equal(t, Valid, v.Outcome(prefix, 64500))

	v.Reset()
	assert.Equal(t, Unknown, v.Outcome(prefix, 64500))
}

func TestASPARegistry(t *testing.T) {
	r := NewASPARegistry()

	// No record: every hop is unknown, hence authorized.
	assert.True(t, r.HopAuthorized(64500, 64501))
	assert.False(t, r.HasAttestation(64500))

	r.Authorize(64500, 64501, 64502)
	assert.True(t, r.HasAttestation(64500))
	assert.True(t, r.HopAuthorized(64500, 64501))
	assert.False(t, r.HopAuthorized(64500, 64666))

	r.Reset()
	assert.False(t, r.HasAttestation(64500))
	assert.True(t, r.HopAuthorized(64500, 64666))
}

func TestPathEndRegistry(t *testing.T) {
	r := NewPathEndRegistry()
	assert.False(t, r.HasRecord(64500))

	r.Attest(64500, 64501)
	assert.True(t, r.HasRecord(64500))
	assert.True(t, r.Attested(64500, 64501))
	assert.False(t, r.Attested(64500, 64666))

	r.Reset()
	assert.False(t, r.HasRecord(64500))
}

func TestValidityString(t *testing.T) {
	assert.Equal(t, "VALID", Valid.String())
	assert.Equal(t, "INVALID_LENGTH", InvalidLength.String())
	assert.False(t, Unknown.IsInvalid())
	assert.True(t, InvalidOrigin.IsInvalid())
}
