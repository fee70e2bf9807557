package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserData is the identity the registrant claims in the personal info step.
type UserData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
}

// VerificationRequest is the payload sent to the verify-face function.
type VerificationRequest struct {
	SelfieImageURL string    `json:"selfieImageUrl"`
	IDFrontURL     string    `json:"idFrontUrl"`
	UserID         string    `json:"userId"`
	UserData       *UserData `json:"userData"`
	IDType         string    `json:"idType"`
}

// Validate fails fast before any external call is made.
func (r *VerificationRequest) Validate() error {
	if strings.TrimSpace(r.SelfieImageURL) == "" ||
		strings.TrimSpace(r.IDFrontURL) == "" ||
		r.UserData == nil ||
		strings.TrimSpace(r.IDType) == "" {
		return ErrMissingParameters
	}
	return nil
}

// VerificationMethod records which decision path produced a result.
type VerificationMethod string

const (
	MethodFace       VerificationMethod = "face"
	MethodOCR        VerificationMethod = "ocr"
	MethodIDTypeGate VerificationMethod = "id_type_gate"
	MethodNone       VerificationMethod = "none"
	MethodTimeout    VerificationMethod = "timeout"
	MethodError      VerificationMethod = "error"
)

// VerificationResult is produced exactly once per request.
type VerificationResult struct {
	Match      bool               `json:"match"`
	Details    string             `json:"details"`
	Similarity float64            `json:"similarity"`
	Method     VerificationMethod `json:"-"`
}

// FailedVerification converts a submission error into a terminal result.
func FailedVerification(details string, method VerificationMethod) *VerificationResult {
	return &VerificationResult{Match: false, Details: details, Method: method}
}

// VerificationAttempt is the persisted trace of one decision.
type VerificationAttempt struct {
	ID         uuid.UUID          `json:"id"`
	UserRef    string             `json:"user_ref"`
	IDType     string             `json:"id_type"`
	Match      bool               `json:"match"`
	Method     VerificationMethod `json:"method"`
	Similarity float64            `json:"similarity"`
	Details    string             `json:"details"`
	LatencyMs  int64              `json:"latency_ms"`
	CreatedAt  time.Time          `json:"created_at"`
}
