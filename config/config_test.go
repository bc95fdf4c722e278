package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"offline-reconciler-go/keys"
	"offline-reconciler-go/transactions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "reconciler", cfg.Node.Id)
	assert.Equal(t, 3, cfg.Mining.Difficulty)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.SubmitTimeout)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.SyncInterval)
	assert.True(t, cfg.Resolver.IdTieBreak)
	assert.False(t, cfg.Reconcile.HaltOnFailure)
	assert.Equal(t, LEDGER_MEMORY, cfg.Ledger.Kind)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
node:
  id: "peer-7"
  port: "4100"
reconcile:
  workers: 2
  submit_timeout: "5s"
resolver:
  id_tie_break: false
ledger:
  kind: horizon
  base_url: "http://localhost:8000"
`
	path := filepath.Join(dir, "reconciler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "peer-7", cfg.Node.Id)
	assert.Equal(t, "4100", cfg.Node.Port)
	assert.Equal(t, 2, cfg.Reconcile.Workers)
	assert.Equal(t, 5*time.Second, cfg.Reconcile.SubmitTimeout)
	assert.False(t, cfg.Resolver.IdTieBreak)
	assert.Equal(t, LEDGER_HORIZON, cfg.Ledger.Kind)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RECONCILER_MINING_DIFFICULTY", "5")
	t.Setenv("RECONCILER_RECONCILE_HALT_ON_FAILURE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Mining.Difficulty)
	assert.True(t, cfg.Reconcile.HaltOnFailure)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"difficulty":   func(c *Config) { c.Mining.Difficulty = 64 },
		"workers":      func(c *Config) { c.Reconcile.Workers = 0 },
		"timeout":      func(c *Config) { c.Reconcile.SubmitTimeout = 0 },
		"rate":         func(c *Config) { c.Reconcile.SubmitRate = -1 },
		"ledger kind":  func(c *Config) { c.Ledger.Kind = "stellar" },
		"horizon url":  func(c *Config) { c.Ledger.Kind = LEDGER_HORIZON },
		"empty nodeid": func(c *Config) { c.Node.Id = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLedgerFunding(t *testing.T) {
	kp, err := keys.GenerateKey()
	require.NoError(t, err)
	address := kp.Address()

	dir := t.TempDir()
	yaml := fmt.Sprintf(`
ledger:
  fund:
    - address: %q
      amount: "100"
    - address: %q
      amount: "0.5"
`, address, address)
	path := filepath.Join(dir, "reconciler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	funding, err := cfg.Ledger.Funding()
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{address: 1005000000}, funding)
}

func TestLedgerFundingRejectsBadEntries(t *testing.T) {
	kp, err := keys.GenerateKey()
	require.NoError(t, err)

	cfg := Default()
	cfg.Ledger.Fund = []FundingConfig{{Address: "not-base58!", Amount: "1"}}
	assert.Error(t, cfg.Validate())

	cfg.Ledger.Fund = []FundingConfig{{Address: kp.Address(), Amount: "lots"}}
	assert.ErrorIs(t, cfg.Validate(), transactions.ErrInvalidAmount)
}
