// Package registration drives the five step sign-up wizard and submits a
// completed form for identity verification.
package registration

import (
	"strings"
	"unicode"

	"github.com/retroconnect/idverify/internal/domain"
)

// DateLayout is the format of Form.DateOfBirth.
const DateLayout = "2006-01-02"

// Form is everything the registrant enters across the wizard. Images are
// JPEG data URIs.
type Form struct {
	FirstName       string `json:"firstName"`
	MiddleName      string `json:"middleName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	BusinessAddress string `json:"business_address"`
	PostalCode      string `json:"postalCode"`
	DateOfBirth     string `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`

	IDType  domain.IDType `json:"idType"`
	IDFront *string       `json:"idFront,omitempty"`
	IDBack  *string       `json:"idBack,omitempty"`
	Selfie  *string       `json:"selfie,omitempty"`
}

// NewForm returns an empty form with the default document selected.
func NewForm() Form {
	return Form{IDType: domain.IDTypeNationalCard}
}

// Normalize applies the input filters of the personal info step: postal
// code and phone keep digits only, username loses all whitespace.
func (f *Form) Normalize() {
	f.PostalCode = keepDigits(f.PostalCode)
	f.PhoneNumber = keepDigits(f.PhoneNumber)
	f.Username = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, f.Username)
}

// FullName joins first, middle and last name with single spaces.
func (f Form) FullName() string {
	return strings.Join(strings.Fields(f.FirstName+" "+f.MiddleName+" "+f.LastName), " ")
}

// ClearImages drops every captured image.
func (f *Form) ClearImages() {
	f.IDFront = nil
	f.IDBack = nil
	f.Selfie = nil
}

func keepDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
