package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
topology: /data/as-rel2.txt
trials: 500
adoption_percents: [0, 50, 100]
attack: subprefix_hijack
defense: rov+otc
seed: 7
workers: 4
log_level: debug
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/as-rel2.txt", c.Topology)
	assert.Equal(t, 500, c.Trials)
	assert.Equal(t, []float64{0, 50, 100}, c.AdoptionPercents)
	assert.Equal(t, "rov+otc", c.Defense)
	assert.Equal(t, int64(7), c.Seed)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "topology: /data/as-rel2.txt\n")
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, c.Trials)
	assert.Equal(t, "subprefix_hijack", c.Attack)
	assert.Equal(t, "rov", c.Defense)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsMissingTopology(t *testing.T) {
	c := Default()
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownAttack(t *testing.T) {
	c := Default()
	c.Topology = "/data/x"
	c.Attack = "dns_poisoning"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownDefenseToken(t *testing.T) {
	c := Default()
	c.Topology = "/data/x"
	c.Defense = "rov+quantum"
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsComposedDefense(t *testing.T) {
	c := Default()
	c.Topology = "/data/x"
	c.Defense = "peer_rov+aspa+path_end"
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsOutOfRangePercent(t *testing.T) {
	c := Default()
	c.Topology = "/data/x"
	c.AdoptionPercents = []float64{0, 120}
	assert.Error(t, c.Validate())
}
