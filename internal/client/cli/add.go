package cli

import (
	"context"
	"fmt"

	"github.com/carechain/carechain/internal/client/models"
)

func (a *App) add(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first")
		return
	}

	draft, err := a.promptPatient(models.Patient{})
	if err != nil {
		fmt.Fprintln(a.out, "Cancelled:", err)
		return
	}

	created, err := a.repo.Create(ctx, draft)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if created.Offline {
		fmt.Fprintf(a.out, "Saved locally as %s, will sync when back online.\n", created.TempID)
	} else {
		fmt.Fprintf(a.out, "Created patient record %d.\n", created.ID)
	}
}

// promptPatient collects record fields interactively, using base as the
// source of defaults shown for the update flow.
func (a *App) promptPatient(base models.Patient) (models.Patient, error) {
	p := base

	name, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return p, err
	}
	if name != "" {
		p.FullName = name
	}

	age, err := GetInt(a.reader, "Age", a.out)
	if err != nil {
		return p, err
	}
	p.Age = age

	if p.Gender, err = GetSimpleText(a.reader, "Gender (optional)", a.out); err != nil {
		return p, err
	}
	if p.BloodType, err = GetSimpleText(a.reader, "Blood type (optional)", a.out); err != nil {
		return p, err
	}
	if p.Condition, err = GetSimpleText(a.reader, "Condition", a.out); err != nil {
		return p, err
	}

	severity, err := GetSimpleText(a.reader, "Severity (low/medium/high/critical/emergency, optional)", a.out)
	if err != nil {
		return p, err
	}
	p.Severity = models.Severity(severity)

	if p.Warnings, err = GetList(a.reader, "Warnings (comma-separated, optional)", a.out); err != nil {
		return p, err
	}
	if p.Allergies, err = GetSimpleText(a.reader, "Allergies (optional)", a.out); err != nil {
		return p, err
	}
	if p.Symptoms, err = GetSimpleText(a.reader, "Symptoms (optional)", a.out); err != nil {
		return p, err
	}
	if p.EmergencyContact, err = GetSimpleText(a.reader, "Emergency contact (optional)", a.out); err != nil {
		return p, err
	}
	if p.Insurance, err = GetSimpleText(a.reader, "Insurance info (optional)", a.out); err != nil {
		return p, err
	}

	return p, nil
}
