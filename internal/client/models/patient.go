// Package models defines the patient record types used by the client.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how urgent a patient's condition is.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityCritical  Severity = "critical"
	SeverityEmergency Severity = "emergency"
)

// Valid reports whether s is one of the known severity levels.
// The empty value is accepted and means "not assessed".
func (s Severity) Valid() bool {
	switch s {
	case "", SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical, SeverityEmergency:
		return true
	}
	return false
}

var ErrInvalidSeverity = errors.New("invalid severity")

// Patient is a single patient record.
//
// Exactly one of ID and TempID identifies the record: ID is the
// server-assigned integer once the record is confirmed, TempID is the
// client-generated identifier a record carries while it only exists in the
// local pending queue. The two live in distinct value spaces so pending and
// confirmed records can be told apart at a glance.
type Patient struct {
	ID               int64
	TempID           string
	FullName         string
	Age              int
	Gender           string
	BloodType        string
	Condition        string
	Severity         Severity
	Warnings         []string
	Allergies        string
	Symptoms         string
	EmergencyContact string
	Insurance        string
	Offline          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTempID generates a temporary identifier for a record created offline.
func NewTempID() string {
	return uuid.NewString()
}

// Key returns the identifier the record is addressed by: the temporary id
// while pending, the server id otherwise.
func (p *Patient) Key() string {
	if p.TempID != "" {
		return p.TempID
	}
	return strconv.FormatInt(p.ID, 10)
}

// Pending reports whether the record has not been accepted by the server yet.
func (p *Patient) Pending() bool {
	return p.TempID != ""
}

// ValidateRequired checks the fields that must be present before any I/O
// is attempted: full name, a positive age and a condition.
func (p *Patient) ValidateRequired() error {
	if p.FullName == "" {
		return fmt.Errorf("%w: full name", ErrRequired)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age", ErrRequired)
	}
	if p.Condition == "" {
		return fmt.Errorf("%w: condition", ErrRequired)
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, p.Severity)
	}
	return nil
}

var ErrRequired = errors.New("required field missing")

// Promotion pairs a pending record's temporary identifier with the
// server-confirmed record that replaced it during a sync pass.
type Promotion struct {
	TempID  string
	Patient Patient
}

// QRPayload is the lookup payload the server encodes into a patient QR code.
// Rendering the payload as an image is up to the caller.
type QRPayload struct {
	PatientID int64     `json:"patient_id"`
	Token     string    `json:"token"`
	Expires   time.Time `json:"exp"`
}
