package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())
}

func TestCyan(t *testing.T) {
	assert.Contains(t, Cyan("Sprint 37"), "Sprint 37")
}

func TestStateColor(t *testing.T) {
	assert.NotEmpty(t, StateColor("New"))
	assert.NotEmpty(t, StateColor("Active"))
	assert.NotEmpty(t, StateColor("Closed"))
	assert.NotEmpty(t, StateColor("Removed"))
	assert.Equal(t, "Custom State", StateColor("Custom State"))
}

func TestTimeFrameColor(t *testing.T) {
	assert.NotEmpty(t, TimeFrameColor("current"))
	assert.NotEmpty(t, TimeFrameColor("future"))
	assert.NotEmpty(t, TimeFrameColor("past"))
	assert.Equal(t, "", TimeFrameColor(""))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Name", "Status"})
	require.NotNil(t, table)

	table.Append([]string{"Sprint 37", "current"})
	table.Append([]string{"Sprint 36", "past"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(strings.ToLower(result), "sprint 37"),
		"table output should contain sprint names")
	assert.True(t, strings.Contains(strings.ToLower(result), "sprint 36"),
		"table output should contain sprint names")
}
