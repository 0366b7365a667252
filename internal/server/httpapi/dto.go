package httpapi

import (
	"time"

	"github.com/carechain/carechain/internal/server/models"
)

// patientRequest is the snake_case wire shape of a patient record as sent by
// clients.
type patientRequest struct {
	FullName         string   `json:"full_name"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	BloodType        string   `json:"blood_type"`
	Condition        string   `json:"condition"`
	Severity         string   `json:"severity"`
	Warnings         []string `json:"warnings"`
	Allergies        string   `json:"allergies"`
	Symptoms         string   `json:"symptoms"`
	EmergencyContact string   `json:"emergency_contact"`
	Insurance        string   `json:"insurance"`
}

func (r *patientRequest) toModel() *models.Patient {
	return &models.Patient{
		FullName:         r.FullName,
		Age:              r.Age,
		Gender:           r.Gender,
		BloodType:        r.BloodType,
		Condition:        r.Condition,
		Severity:         r.Severity,
		Warnings:         r.Warnings,
		Allergies:        r.Allergies,
		Symptoms:         r.Symptoms,
		EmergencyContact: r.EmergencyContact,
		Insurance:        r.Insurance,
	}
}

type patientResponse struct {
	ID               int64     `json:"id"`
	FullName         string    `json:"full_name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender,omitempty"`
	BloodType        string    `json:"blood_type,omitempty"`
	Condition        string    `json:"condition"`
	Severity         string    `json:"severity,omitempty"`
	Warnings         []string  `json:"warnings,omitempty"`
	Allergies        string    `json:"allergies,omitempty"`
	Symptoms         string    `json:"symptoms,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	Insurance        string    `json:"insurance,omitempty"`
	CreatorID        int64     `json:"creator_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toPatientResponse(p *models.Patient) patientResponse {
	return patientResponse{
		ID:               p.ID,
		FullName:         p.FullName,
		Age:              p.Age,
		Gender:           p.Gender,
		BloodType:        p.BloodType,
		Condition:        p.Condition,
		Severity:         p.Severity,
		Warnings:         p.Warnings,
		Allergies:        p.Allergies,
		Symptoms:         p.Symptoms,
		EmergencyContact: p.EmergencyContact,
		Insurance:        p.Insurance,
		CreatorID:        p.CreatorID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type qrResponse struct {
	PatientID int64     `json:"patient_id"`
	Token     string    `json:"token"`
	Expires   time.Time `json:"exp"`
}
