package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bizwiz/adapters/mail"
	"bizwiz/internal/config"
	"bizwiz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestApp() *app {
	return &app{newSender: defaultSender}
}

// run executes the CLI with a config path that does not exist, so only
// defaults and the environment apply
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a.out = &buf
	root := a.rootCmd()
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBizdays(t *testing.T) {
	out, err := run(t, newTestApp(), "bizdays", "2024-01-01", "2024-01-12")
	require.NoError(t, err)
	assert.Contains(t, out, "Business days: 10")

	out, err = run(t, newTestApp(), "bizdays", "--format", "%d/%m/%Y", "06/01/2024", "07/01/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Business days: 0")

	_, err = run(t, newTestApp(), "bizdays", "2024-13-01", "2024-01-12")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestBizdays_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pairs.csv", "start,end\n2024-01-01,2024-01-12\n2024-01-06,2024-01-08\n")

	out, err := run(t, newTestApp(), "bizdays", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "business_days")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "2024-01-06")

	_, err = run(t, newTestApp(), "bizdays", "--file", path, "2024-01-01")
	assert.Error(t, err)
}

func TestDatesList(t *testing.T) {
	out, err := run(t, newTestApp(), "dates", "list", "2024-01-05", "2024-01-09", "--skip-weekends")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-05", "2024-01-08", "2024-01-09"}, strings.Fields(out))

	out, err = run(t, newTestApp(), "dates", "months", "2024-01-15", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02", "2024-03"}, strings.Fields(out))

	out, err = run(t, newTestApp(), "dates", "months", "2024-01-01", "2024-03-02", "--format", "%Y-%m-%d")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"}, strings.Fields(out))

	_, err = run(t, newTestApp(), "dates", "list", "2024-01-05", "2024-01-09", "--step", "0")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDateDiff(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", "id,ordered,shipped\n1,2024-01-01,2024-01-12\n")

	out, err := run(t, newTestApp(), "datediff", path, "--start", "ordered", "--end", "shipped", "--calc", "business days")
	require.NoError(t, err)
	assert.Contains(t, out, "date_diff")
	assert.Contains(t, out, "10")

	_, err = run(t, newTestApp(), "datediff", path, "--start", "ordered", "--end", "shipped", "--calc", "weeks")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRead_StacksFilesWithDifferentColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "Region,Amount\nNorth,10\n")
	writeFile(t, dir, "b.csv", "Region,Units\nSouth,3\n")
	out := filepath.Join(t.TempDir(), "combined.csv")

	stdout, err := run(t, newTestApp(), "read", "csv", dir, "--clean-names", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 row(s)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.ElementsMatch(t, []string{"region", "amount", "units"}, strings.Split(header, ","))

	_, err = run(t, newTestApp(), "read", "json", dir)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestDBLoadAndQuery(t *testing.T) {
	t.Setenv("BIZWIZ_DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "bizwiz.db"))
	path := writeFile(t, t.TempDir(), "sales.csv", "Region,Amount\nNorth,10\nSouth,7\n")

	out, err := run(t, newTestApp(), "db", "load", path, "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 row(s) into sales")

	out, err = run(t, newTestApp(), "db", "query", "SELECT region, amount FROM sales ORDER BY region")
	require.NoError(t, err)
	assert.Contains(t, out, "North")
	assert.Contains(t, out, "South")

	out, err = run(t, newTestApp(), "db", "exec", "DELETE FROM sales WHERE region = 'South'")
	require.NoError(t, err)
	assert.Contains(t, out, "Executed 1 statement(s)")

	_, err = run(t, newTestApp(), "db", "load", path, "bad-name")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestChartFunnel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stages.csv", "stage,value\nVisits,100\nSignups,60\nOrders,25\n")
	png := filepath.Join(t.TempDir(), "funnel.png")

	out, err := run(t, newTestApp(), "chart", "funnel", path, "--x", "value", "--label", "stage", "--out", png)
	require.NoError(t, err)
	assert.Contains(t, out, "Chart saved")
	assert.FileExists(t, png)

	_, err = run(t, newTestApp(), "chart", "funnel", path, "--x", "value", "--label", "stage", "--xmax", "50", "--out", png)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestEmailSend_UsesSender(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.md", "# Weekly\n\nSales are **up**.\n")
	totals := writeFile(t, dir, "totals.csv", "region,amount\nNorth,10\n")
	attachment := writeFile(t, dir, "sales.csv", "region,amount\nNorth,10\n")

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
		return m.Subject == "Weekly sales" &&
			len(m.To) == 2 &&
			strings.Contains(m.HTML, "<strong>up</strong>") &&
			strings.Contains(m.HTML, "<td>North</td>") &&
			strings.Contains(m.HTML, "Regards,") &&
			len(m.Attachments) == 1
	})).Return(nil).Once()

	var gotDraft string
	a := newTestApp()
	a.newSender = func(cfg config.SMTPConfig, draft string, timeout time.Duration) (mail.Sender, error) {
		gotDraft = draft
		return sender, nil
	}

	out, err := run(t, a, "email", "send",
		"--to", "a@example.com", "--to", "b@example.com",
		"--subject", "Weekly sales",
		"--body-md", notes, "--table", totals, "--attach", attachment)
	require.NoError(t, err)
	assert.Contains(t, out, "Email sent to 2 recipient(s)")
	assert.Empty(t, gotDraft)
	sender.AssertExpectations(t)
}

func TestEmailSend_InvalidMessageIsNotSent(t *testing.T) {
	sender := &mockSender{}
	a := newTestApp()
	a.newSender = func(config.SMTPConfig, string, time.Duration) (mail.Sender, error) {
		return sender, nil
	}

	_, err := run(t, a, "email", "send", "--to", "not-an-address", "--subject", "x")
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestEmailSend_Draft(t *testing.T) {
	draft := filepath.Join(t.TempDir(), "report.eml")

	out, err := run(t, newTestApp(), "email", "send", "--to", "a@example.com", "--subject", "Draft", "--body", "Numbers attached", "--draft", draft)
	require.NoError(t, err)
	assert.Contains(t, out, "Draft written")

	raw, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Draft")
}

func TestDefaultSender(t *testing.T) {
	s, err := defaultSender(config.SMTPConfig{}, "out.eml", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &mail.DraftWriter{}, s)

	_, err = defaultSender(config.SMTPConfig{}, "", time.Second)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
