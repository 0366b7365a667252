package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/carechain/carechain/internal/client/models"
)

func (a *App) list(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	res, err := a.repo.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if res.Degraded {
		fmt.Fprintln(a.out, "Server unreachable, showing cached data.")
	}
	if len(res.Patients) == 0 {
		fmt.Fprintln(a.out, "No patient records")
		return
	}

	for i := range res.Patients {
		fmt.Fprintln(a.out, formatPatientLine(&res.Patients[i]))
	}
}

func formatPatientLine(p *models.Patient) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-24s age %-3d %s", p.Key(), p.FullName, p.Age, p.Condition)
	if p.Severity != "" {
		fmt.Fprintf(&b, " [%s]", p.Severity)
	}
	if p.Offline {
		b.WriteString(" (not synced)")
	}
	return b.String()
}
