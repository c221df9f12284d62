package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatTitle("TaxPilot"), PilotIcon)
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon)
	assert.Contains(t, FormatError("boom"), ErrorIcon)
	assert.Contains(t, FormatError("boom"), "boom")
	assert.Contains(t, FormatWarning("flagged"), WarningIcon)
	assert.Contains(t, FormatWarning("flagged"), "flagged")
	assert.Contains(t, FormatPrompt("you"), "you")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Refund", "You're getting $4,411 back.")
	assert.Contains(t, out, "Refund")
	assert.Contains(t, out, "$4,411")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "STATUS"},
		[][]string{
			{"demo-review-1", "pending"},
			{"demo-review-2", "approved"},
		},
	)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "demo-review-1")
	assert.Contains(t, out, "approved")
}
