package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tradebook/internal/cli"
	"github.com/MrJamesThe3rd/tradebook/internal/http/auth"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

const ledger = "id,name,date,supplierName,goodsName,quantity,purchaseRate,status\n" +
	"tx-1,Wheat lot,2024-03-15,Northern Farms Ltd.,Wheat,10,100,pending\n" +
	"tx-2,Rice run,2024-03-16,Delta Agro,Rice,5,40,completed\n"

// setup points the store at a fresh sqlite file and returns a directory for fixtures.
func setup(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AUTH_SECRET", "")

	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func importLedger(t *testing.T, dir string) {
	t.Helper()

	path := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledger), 0o644))

	out, err := run(t, dir, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 trade(s)")
}

func TestImportAndList(t *testing.T) {
	dir := setup(t)
	importLedger(t, dir)

	out, err := run(t, dir, "list", "--json", "--status", "pending")
	require.NoError(t, err)

	var txs []trade.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "tx-1", txs[0].ID)
	assert.Equal(t, 1000.0, txs[0].TotalAmount)

	out, err = run(t, dir, "list", "-q", "delta")
	require.NoError(t, err)
	assert.Contains(t, out, "Rice run")
	assert.NotContains(t, out, "Wheat lot")
}

func TestImport_ConflictsAreReported(t *testing.T) {
	dir := setup(t)
	importLedger(t, dir)

	out, err := run(t, dir, "import", filepath.Join(dir, "ledger.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 trade(s)")
	assert.Contains(t, out, "Skipped tx-1 (Wheat lot): id already exists")
}

func TestImport_DryRun(t *testing.T) {
	dir := setup(t)

	path := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledger), 0o644))

	out, err := run(t, dir, "import", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 trade(s) would be imported")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No trades found.")
}

func TestExport(t *testing.T) {
	dir := setup(t)
	importLedger(t, dir)

	dest := filepath.Join(dir, "out.csv")

	out, err := run(t, dir, "export", "--format", "csv", "--out", dest, "--from", "2024-03-16")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "tx-2,"))
}

func TestExport_Stdout(t *testing.T) {
	dir := setup(t)
	importLedger(t, dir)

	out, err := run(t, dir, "export", "--out", "-")
	require.NoError(t, err)

	var txs []trade.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	assert.Len(t, txs, 2)
}

func TestSummary(t *testing.T) {
	dir := setup(t)
	importLedger(t, dir)

	out, err := run(t, dir, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Trades:      2 (pending 1, completed 1, cancelled 0)")
	assert.Contains(t, out, "Purchases:   1200.00")
}

func TestLearn(t *testing.T) {
	dir := setup(t)

	_, err := run(t, dir, "learn", "northern", "Northern Farms Ltd.")
	require.NoError(t, err)

	out, err := run(t, dir, "learn", "--list")
	require.NoError(t, err)
	assert.Equal(t, "northern -> Northern Farms Ltd.\n", out)
}

func TestErrors(t *testing.T) {
	dir := setup(t)

	_, err := run(t, dir, "show", "missing")
	assert.ErrorIs(t, err, trade.ErrNotFound)

	_, err = run(t, dir, "list", "--status", "lost")
	assert.ErrorIs(t, err, trade.ErrValidation)

	_, err = run(t, dir, "export", "--format", "docx")
	assert.ErrorIs(t, err, trade.ErrValidation)
}

func TestToken(t *testing.T) {
	dir := setup(t)

	_, err := run(t, dir, "token")
	assert.ErrorContains(t, err, "AUTH_SECRET")

	t.Setenv("AUTH_SECRET", "s3cret")

	out, err := run(t, dir, "token", "--subject", "desk")
	require.NoError(t, err)

	subject, err := auth.Verify("s3cret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "desk", subject)
}
