package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/carechain/carechain/internal/client/models"
)

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("record id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a server record id: %q", args[0])
	}
	return id, nil
}

func (a *App) show(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return
	}

	p, err := a.repo.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	a.printPatient(p)
}

func (a *App) printPatient(p *models.Patient) {
	fmt.Fprintf(a.out, "Record %s\n", p.Key())
	fmt.Fprintf(a.out, "  Full name: %s\n", p.FullName)
	fmt.Fprintf(a.out, "  Age:       %d\n", p.Age)
	if p.Gender != "" {
		fmt.Fprintf(a.out, "  Gender:    %s\n", p.Gender)
	}
	if p.BloodType != "" {
		fmt.Fprintf(a.out, "  Blood:     %s\n", p.BloodType)
	}
	fmt.Fprintf(a.out, "  Condition: %s\n", p.Condition)
	if p.Severity != "" {
		fmt.Fprintf(a.out, "  Severity:  %s\n", p.Severity)
	}
	if len(p.Warnings) > 0 {
		fmt.Fprintf(a.out, "  Warnings:  %s\n", strings.Join(p.Warnings, "; "))
	}
	if p.Allergies != "" {
		fmt.Fprintf(a.out, "  Allergies: %s\n", p.Allergies)
	}
	if p.Symptoms != "" {
		fmt.Fprintf(a.out, "  Symptoms:  %s\n", p.Symptoms)
	}
	if p.EmergencyContact != "" {
		fmt.Fprintf(a.out, "  Contact:   %s\n", p.EmergencyContact)
	}
	if p.Insurance != "" {
		fmt.Fprintf(a.out, "  Insurance: %s\n", p.Insurance)
	}
	if p.Offline {
		fmt.Fprintln(a.out, "  (not synced yet)")
	}
}

func (a *App) update(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: update <id>")
		return
	}

	current, err := a.repo.Get(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Current record:")
	a.printPatient(current)
	fmt.Fprintln(a.out, "Enter new values (name keeps its value when left empty):")

	patch, err := a.promptPatient(*current)
	if err != nil {
		fmt.Fprintln(a.out, "Cancelled:", err)
		return
	}

	updated, err := a.repo.Update(ctx, id, patch)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "Updated record %d.\n", updated.ID)
}

func (a *App) delete(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return
	}

	if err := a.repo.Delete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "Deleted record %d.\n", id)
}

func (a *App) qrcode(ctx context.Context, args []string) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: qr <id>")
		return
	}

	// Look the record up in the current list so pending records get the
	// dedicated "not synced" message rather than a parse error.
	var target *models.Patient
	for _, p := range a.repo.Patients() {
		if p.Key() == args[0] {
			target = &p
			break
		}
	}
	if target == nil {
		id, err := parseID(args)
		if err != nil {
			fmt.Fprintln(a.out, "Usage: qr <id>")
			return
		}
		target = &models.Patient{ID: id}
	}

	payload, err := a.repo.QRCode(ctx, target)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "QR payload for record %d:\n", payload.PatientID)
	fmt.Fprintf(a.out, "  token:   %s\n", payload.Token)
	fmt.Fprintf(a.out, "  expires: %s\n", payload.Expires.Local())
}
