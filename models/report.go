package models

import (
	"time"

	"github.com/google/uuid"
)

// Report lifecycle statuses. There is no transition back to pending.
const (
	ReportStatusPending    = "pending"
	ReportStatusInProgress = "in_progress"
	ReportStatusCompleted  = "completed"
	ReportStatusVerified   = "verified"
)

// Report is a user-submitted temperature observation tied to a location
// and object type.
type Report struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID             uint      `json:"user_id" gorm:"not null;index"`
	Location           string    `json:"location" gorm:"not null"`
	ObjectType         string    `json:"object_type" gorm:"column:material_type;not null"`
	Temperature        float64   `json:"temperature" gorm:"not null"`
	Weather            float64   `json:"weather"`
	ImageURL           string    `json:"image_url"`
	ThumbnailURL       string    `json:"thumbnail_url"`
	VerificationResult string    `json:"verification_result,omitempty"`
	Notes              string    `json:"notes"`
	Status             string    `json:"status" gorm:"not null;index"`
	CollectorID        *uint     `json:"collector_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// VerifiedReport is the immutable audit record written when a collector
// verification succeeds.
type VerifiedReport struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ReportID         uuid.UUID `json:"report_id" gorm:"type:uuid;not null;uniqueIndex"`
	VerifierID       uint      `json:"verifier_id" gorm:"not null"`
	VerificationDate time.Time `json:"verification_date"`
	Status           string    `json:"status" gorm:"default:verified"`
}

// VerifyTask is the collector-facing projection of a report.
type VerifyTask struct {
	ID          uuid.UUID `json:"id"`
	Location    string    `json:"location"`
	ObjectType  string    `json:"material_type"`
	Temperature float64   `json:"temperature"`
	Weather     float64   `json:"weather"`
	Status      string    `json:"status"`
	Date        string    `json:"date"`
	CollectorID *uint     `json:"collector_id"`
}

type SubmitReportRequest struct {
	Location           string  `json:"location" binding:"required"`
	ObjectType         string  `json:"object_type" binding:"required"`
	Temperature        float64 `json:"temperature"`
	Weather            float64 `json:"weather"`
	ImageURL           string  `json:"image_url"`
	Notes              string  `json:"notes"`
	VerificationResult string  `json:"verification_result"`
}
