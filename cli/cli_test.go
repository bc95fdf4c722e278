package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"offline-reconciler-go/blocks"
	"offline-reconciler-go/config"
	"offline-reconciler-go/keys"
	"offline-reconciler-go/pow"
	"offline-reconciler-go/reconciler"
	"offline-reconciler-go/resolver"
	"offline-reconciler-go/transactions"
	"offline-reconciler-go/wallets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoScenario(t *testing.T) {
	var out bytes.Buffer
	outcomes, names, err := runDemo(context.Background(), reconciler.CoordinatorConfig{
		Workers:       2,
		SubmitTimeout: time.Second,
	}, &out)
	require.NoError(t, err)
	require.Len(t, outcomes, 6)
	assert.Contains(t, out.String(), "Bob -> Charlie recorded offline")

	first := map[string]reconciler.Outcome{}
	for _, o := range outcomes {
		assert.Equal(t, reconciler.SUBMITTED, o.Status)
		if o.Rank == 1 {
			first[names[o.Sender]] = o
		}
	}
	assert.Equal(t, resolver.REASON_HEAVY_WORK, first["Bob"].Reason)
	assert.Equal(t, "Charlie", names[first["Bob"].Transaction.Recipient])
	assert.Equal(t, resolver.REASON_HIGH_SIG_COUNT, first["Alice"].Reason)
	assert.Equal(t, "Bob", names[first["Alice"].Transaction.Recipient])
	assert.Equal(t, resolver.REASON_EARLIEST, first["Charlie"].Reason)
	assert.Equal(t, "Dave", names[first["Charlie"].Transaction.Recipient])
}

func TestWriteCSV(t *testing.T) {
	names := map[string]string{"GA": "Alice", "GB": "Bob"}
	outcomes := []reconciler.Outcome{
		{
			Sender:      "GA",
			Transaction: transactions.Transaction{Recipient: "GB", Amount: 10 * transactions.AMOUNT_SCALE},
			Status:      reconciler.SUBMITTED,
			Hash:        "h1",
		},
		{
			Sender:      "GB",
			Transaction: transactions.Transaction{Recipient: "GC", Amount: 1},
			Status:      reconciler.FAILED,
			Err:         errors.New("boom"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, outcomes, names))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"sender", "recipient", "amt", "id"},
		{"Alice", "Bob", "10.0000000", "h1"},
	}, rows)

	buf.Reset()
	require.NoError(t, printOutcomes(&buf, outcomes, names))
	assert.True(t, strings.HasPrefix(buf.String(), "SENDER"))
	assert.Contains(t, buf.String(), "boom")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"node", "wallet", "propose", "sync", "demo"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestWalletCommand(t *testing.T) {
	t.Setenv("RECONCILER_NODE_DATA_DIR", t.TempDir())
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"wallet", "--name", "alice"})
	require.NoError(t, root.Execute())
	first := strings.TrimSpace(out.String())
	assert.NotEmpty(t, first)

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"wallet", "--name", "alice"})
	require.NoError(t, root.Execute())
	assert.Equal(t, first, strings.TrimSpace(out.String()))
}

func TestSyncSettlesFundedPaymentWithDefaults(t *testing.T) {
	dir := t.TempDir()
	alice, err := wallets.NewWallet(dir, "alice")
	require.NoError(t, err)
	bob, err := keys.GenerateKey()
	require.NoError(t, err)

	path := filepath.Join(dir, "reconciler.yaml")
	yaml := fmt.Sprintf(`
node:
  data_dir: %q
ledger:
  fund:
    - address: %q
      amount: "100"
`, dir, alice.Address())
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	// record a payment the way a running node would
	cfgFile = path
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.LEDGER_MEMORY, cfg.Ledger.Kind)
	submitter, err := newSubmitter(cfg)
	require.NoError(t, err)
	r, db, err := openReconciler(cfg, submitter)
	require.NoError(t, err)

	tx, err := alice.NewPayment(bob.Address(), 10*transactions.AMOUNT_SCALE, "")
	require.NoError(t, err)
	block, err := pow.MineBlock(
		context.Background(),
		[]transactions.Transaction{*tx},
		blocks.BlockInfo{Difficulty: byte(cfg.Mining.Difficulty)},
		[]string{alice.Address()},
	)
	require.NoError(t, err)
	_, err = r.SubmitProposal(block)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	csvPath := filepath.Join(dir, "data.csv")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sync", "-c", path, "--csv", csvPath})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "submitted")
	assert.NotContains(t, out.String(), "unknown account")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{alice.Address(), bob.Address(), "10.0000000"}, rows[1][:3])
}

func TestMemoryLedgerIsFundedFromConfig(t *testing.T) {
	kp, err := keys.GenerateKey()
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Ledger.Fund = []config.FundingConfig{{Address: kp.Address(), Amount: "2.5"}}

	l, err := newMemoryLedger(&cfg.Ledger)
	require.NoError(t, err)
	balance, ok := l.Balance(kp.Address())
	assert.True(t, ok)
	assert.Equal(t, uint64(25000000), balance)
}
