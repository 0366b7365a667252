package models

import "time"

// Patient is the server-side patient record. Warnings is stored as a JSON
// array in a text column. QRToken holds the last issued QR token and rotates
// on every qrcode request.
type Patient struct {
	ID               int64
	FullName         string
	Age              int
	Gender           string
	BloodType        string
	Condition        string
	Severity         string
	Warnings         []string
	Allergies        string
	Symptoms         string
	EmergencyContact string
	Insurance        string
	QRToken          string
	CreatorID        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
