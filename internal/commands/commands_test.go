package commands_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallywallet/tallywallet/internal/audit"
	"github.com/tallywallet/tallywallet/internal/chart"
	"github.com/tallywallet/tallywallet/internal/commands"
	"github.com/tallywallet/tallywallet/internal/config"
	"github.com/tallywallet/tallywallet/internal/record"
)

func runTally(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func initBook(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := runTally(t, append([]string{"init", dir}, args...)...)
	require.NoError(t, err)
	return filepath.Join(dir, config.FileName)
}

func TestVersion(t *testing.T) {
	out, _, err := runTally(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "tally version dev (commit: none, built: unknown)")
}

func TestInit_WritesBook(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runTally(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized tally book at")
	assert.Contains(t, out, "(selinger, 4 columns, ref CAD)")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "CAD", cfg.Ledger.Ref)
	assert.Len(t, cfg.Entries, 5)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := initBook(t)
	_, _, err := runTally(t, "init", filepath.Dir(path), "--chart", "keen")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = runTally(t, "init", filepath.Dir(path), "--chart", "keen", "--force")
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "keen", cfg.Ledger.Chart)
}

func TestInit_ColumnsCSV(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cols.csv")
	c, err := chart.Default("keen")
	require.NoError(t, err)
	require.NoError(t, chart.Save(src, c.Columns[:2]))

	path := initBook(t, "--columns-csv", src, "--ref", "usd")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Ledger.Ref)
	assert.Equal(t, "cols.csv", cfg.Ledger.Chart)
	assert.Len(t, cfg.Ledger.Columns, 2)
	assert.Empty(t, cfg.Entries)
}

func TestInit_Errors(t *testing.T) {
	_, _, err := runTally(t, "init", t.TempDir(), "--chart", "ifrs")
	assert.ErrorContains(t, err, "unknown chart")

	_, _, err = runTally(t, "init", t.TempDir(), "--ref", "EUR")
	assert.Error(t, err)

	_, _, err = runTally(t, "init", t.TempDir(), "--columns-csv", filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorContains(t, err, "opening columns file")
}

func TestRun_YAML(t *testing.T) {
	path := initBook(t)
	out, stderr, err := runTally(t, "run", "--book", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "book replayed")

	rec, err := record.Read(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rec.Journals, 5)
	last := rec.Journals[4]
	assert.Equal(t, "ok", last.Meta["status"])
	assert.Equal(t, "7.00", last.Balances[5].StringFixed(2))
}

func TestRun_CSVToFile(t *testing.T) {
	path := initBook(t)
	dest := filepath.Join(t.TempDir(), "record.csv")
	out, _, err := runTally(t, "run", "--book", path, "--format", "csv", "-o", dest, "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, out)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "entry", rows[0][0])
	assert.Equal(t, "2013-01-005", rows[5][0])
}

func TestRun_InvalidBookKeepsOutput(t *testing.T) {
	path := initBook(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Entries[0].Postings[0].Column = "Wallet"
	require.NoError(t, config.Save(path, cfg))

	dest := filepath.Join(t.TempDir(), "record.yaml")
	require.NoError(t, os.WriteFile(dest, []byte("previous record\n"), 0o644))

	_, _, err = runTally(t, "run", "--book", path, "-o", dest, "--log-level", "error")
	assert.ErrorContains(t, err, `"Wallet"`)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous record\n", string(got))
}

func TestRun_MissingBook(t *testing.T) {
	_, _, err := runTally(t, "run", "--book", filepath.Join(t.TempDir(), "tally.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_WarnsOnUnbalancedEntries(t *testing.T) {
	path := initBook(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Entries[1].Postings = cfg.Entries[1].Postings[:1]
	require.NoError(t, config.Save(path, cfg))

	_, stderr, err := runTally(t, "run", "--book", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "books do not balance")
	assert.Contains(t, stderr, "warning: 4 of 5 entries left the books unbalanced")
}

func TestCheck(t *testing.T) {
	path := initBook(t)
	out, _, err := runTally(t, "check", "--book", path, "--log-level", "warn")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "ENTRY")
	assert.Contains(t, lines[1], "2013-01-001")
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[1], "$200.00 = $200.00")
	assert.Contains(t, lines[5], "$207.00 = $207.00")
	assert.Contains(t, lines[5], "Buy food")
}

func TestCheck_FailsWhenUnbalanced(t *testing.T) {
	path := initBook(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Entries[0].Rates = nil
	cfg.Entries[2].Rates = nil
	cfg.Entries[3].Rates = nil
	require.NoError(t, config.Save(path, cfg))

	out, _, err := runTally(t, "check", "--book", path, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "books do not balance")
	assert.Contains(t, out, "undefined")
	assert.Contains(t, out, "US cash")
}

func TestColumns(t *testing.T) {
	path := initBook(t)
	out, _, err := runTally(t, "columns", "--book", path)
	require.NoError(t, err)

	assert.Contains(t, out, "COLUMN")
	for _, want := range []string{"Canadian cash", "$135.00", "Expense", "$72.00", "USD trading account", "$7.00"} {
		assert.Contains(t, out, want)
	}
}

func TestColumns_CSV(t *testing.T) {
	path := initBook(t)
	out, _, err := runTally(t, "columns", "--book", path, "--csv")
	require.NoError(t, err)

	cols, err := chart.ReadColumns(strings.NewReader(out))
	require.NoError(t, err)
	c, err := chart.Default("selinger")
	require.NoError(t, err)
	assert.Equal(t, c.Columns, cols)
}

func TestRun_Audit(t *testing.T) {
	path := initBook(t)
	trail := filepath.Join(t.TempDir(), "audit.csv")

	_, _, err := runTally(t, "run", "--book", path, "--audit", trail, "--log-level", "error")
	require.NoError(t, err)
	_, _, err = runTally(t, "run", "--book", path, "--audit", trail, "--log-level", "error")
	require.NoError(t, err)

	entries, err := audit.Read(trail)
	require.NoError(t, err)
	assert.Len(t, entries, 2*22, "two runs of 22 commits each")
	assert.Equal(t, "2013-01-001", entries[0].EntryID)
	assert.Equal(t, audit.KindRevaluation, entries[0].Kind)
	assert.Equal(t, "2013-01-005b", entries[21].PostingID)
}

func writeStatement(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(`date,description,amount
2013-01-10,Hotel,-30
2013-01-08,Taxi,-12.50
`), 0o644))
	return path
}

func TestImport(t *testing.T) {
	path := initBook(t)
	stmt := writeStatement(t)

	out, _, err := runTally(t, "import", stmt, "--book", path, "--format", "plain", "--account", "Canadian cash", "--counter", "Expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 transactions")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Entries, 7)
	assert.Equal(t, "Taxi", cfg.Entries[5].Note)
	assert.Equal(t, "2013-01-10", cfg.Entries[6].Date)

	out, _, err = runTally(t, "columns", "--book", path, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "$92.50")
	assert.Contains(t, out, "$114.50")
}

func TestImport_DryRun(t *testing.T) {
	path := initBook(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, _, err := runTally(t, "import", writeStatement(t), "--book", path, "--format", "plain",
		"--account", "Canadian cash", "--counter", "Expense", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would import 2 transactions")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestImport_Errors(t *testing.T) {
	path := initBook(t)
	stmt := writeStatement(t)

	_, _, err := runTally(t, "import", stmt, "--book", path, "--format", "plain", "--account", "Wallet", "--counter", "Expense")
	assert.ErrorContains(t, err, "--account")

	_, _, err = runTally(t, "import", stmt, "--book", path, "--format", "plain", "--account", "US cash", "--counter", "Expense")
	assert.ErrorContains(t, err, "is in CAD")

	_, _, err = runTally(t, "import", stmt, "--book", path, "--account", "Canadian cash", "--counter", "Expense")
	assert.ErrorContains(t, err, "reading chase CSV")

	_, _, err = runTally(t, "import", stmt, "--book", path, "--format", "plain", "--account", "Canadian cash")
	assert.ErrorContains(t, err, "counter")
}

func TestImport_BeforeLastEntry(t *testing.T) {
	path := initBook(t)
	stmt := filepath.Join(t.TempDir(), "old.csv")
	require.NoError(t, os.WriteFile(stmt, []byte("date,description,amount\n2012-12-30,Deposit,-5\n"), 0o644))

	_, _, err := runTally(t, "import", stmt, "--book", path, "--format", "plain", "--account", "Canadian cash", "--counter", "Expense")
	assert.ErrorContains(t, err, "dated before the previous entry")
}
