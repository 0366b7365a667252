package cli

import (
	"testing"

	"github.com/carechain/carechain/internal/client/models"
	"github.com/stretchr/testify/require"
)

func TestFormatPatientLine(t *testing.T) {
	confirmed := models.Patient{ID: 57, FullName: "Jane Doe", Age: 34, Condition: "fever", Severity: models.SeverityHigh}
	line := formatPatientLine(&confirmed)
	require.Contains(t, line, "57")
	require.Contains(t, line, "Jane Doe")
	require.Contains(t, line, "[high]")
	require.NotContains(t, line, "not synced")

	pending := models.Patient{TempID: "3f1c0e1a", FullName: "John Roe", Age: 61, Condition: "fracture", Offline: true}
	line = formatPatientLine(&pending)
	require.Contains(t, line, "3f1c0e1a")
	require.Contains(t, line, "(not synced)")
}
