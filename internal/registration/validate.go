package registration

import (
	"strings"
	"time"
	"unicode"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
	MinimumAge        = 15
	PostalCodeLength  = 4
	PhoneNumberLength = 11

	passwordSpecials = "!@#$%^&*"
)

// PersonalInfoErrors holds one message per invalid field of step 1.
type PersonalInfoErrors struct {
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Username        string `json:"username,omitempty"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	BusinessAddress string `json:"business_address,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Email           string `json:"email,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Form            string `json:"form,omitempty"`
}

func (e PersonalInfoErrors) messages() []string {
	return nonEmpty(e.FirstName, e.LastName, e.Username, e.DateOfBirth, e.BusinessAddress,
		e.PostalCode, e.Gender, e.Email, e.PhoneNumber, e.Password, e.ConfirmPassword, e.Form)
}

func (e PersonalInfoErrors) Empty() bool { return len(e.messages()) == 0 }

func (e PersonalInfoErrors) Error() string { return strings.Join(e.messages(), " ") }

// IDVerificationErrors holds the messages of step 2.
type IDVerificationErrors struct {
	IDType  string `json:"idType,omitempty"`
	IDFront string `json:"idFront,omitempty"`
	IDBack  string `json:"idBack,omitempty"`
	ID      string `json:"id,omitempty"`
}

func (e IDVerificationErrors) messages() []string {
	return nonEmpty(e.IDType, e.IDFront, e.IDBack, e.ID)
}

func (e IDVerificationErrors) Empty() bool { return len(e.messages()) == 0 }

func (e IDVerificationErrors) Error() string { return strings.Join(e.messages(), " ") }

// ReviewErrors holds the message blocking the move from selfie to review.
type ReviewErrors struct {
	Selfie string `json:"selfie,omitempty"`
}

func (e ReviewErrors) Empty() bool { return e.Selfie == "" }

func (e ReviewErrors) Error() string { return e.Selfie }

// ValidatePersonalInfo checks step 1. now anchors the age computation.
func ValidatePersonalInfo(f Form, now time.Time) PersonalInfoErrors {
	var errs PersonalInfoErrors
	missing := false

	required := func(value string, target *string, label string) {
		if strings.TrimSpace(value) == "" {
			*target = label + " is required."
			missing = true
		}
	}
	required(f.FirstName, &errs.FirstName, "First name")
	required(f.LastName, &errs.LastName, "Last name")
	required(f.Username, &errs.Username, "Username")
	required(f.BusinessAddress, &errs.BusinessAddress, "Business address")
	required(f.PostalCode, &errs.PostalCode, "Postal code")
	required(f.Gender, &errs.Gender, "Gender")
	required(f.Email, &errs.Email, "Email")
	required(f.PhoneNumber, &errs.PhoneNumber, "Phone number")
	required(f.Password, &errs.Password, "Password")
	required(f.ConfirmPassword, &errs.ConfirmPassword, "Confirm password")

	if f.Username != "" && len([]rune(f.Username)) < MinUsernameLength {
		errs.Username = "Username must be at least 3 characters."
	}
	if f.PostalCode != "" && (len(f.PostalCode) != PostalCodeLength || keepDigits(f.PostalCode) != f.PostalCode) {
		errs.PostalCode = "Postal code must be 4 digits."
	}
	if f.PhoneNumber != "" {
		switch {
		case len(f.PhoneNumber) != PhoneNumberLength || keepDigits(f.PhoneNumber) != f.PhoneNumber:
			errs.PhoneNumber = "Phone number must be 11 digits."
		case !strings.HasPrefix(f.PhoneNumber, "0"):
			errs.PhoneNumber = "Phone number must start with 0."
		}
	}
	if f.Password != "" {
		if msg := passwordComplexity(f.Password); msg != "" {
			errs.Password = msg
		} else if f.Password != f.ConfirmPassword {
			errs.ConfirmPassword = "Passwords do not match."
		}
	}
	if msg := validateAge(f.DateOfBirth, now); msg != "" {
		errs.DateOfBirth = msg
		if strings.TrimSpace(f.DateOfBirth) == "" {
			missing = true
		}
	}

	if missing {
		errs.Form = "Please fill out all required fields."
	}
	return errs
}

func passwordComplexity(password string) string {
	if len(password) < MinPasswordLength {
		return "Password must be at least 8 characters."
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !lower:
		return "Password must contain a lowercase letter."
	case !upper:
		return "Password must contain an uppercase letter."
	case !digit:
		return "Password must contain a number."
	case !special:
		return "Password must contain a special character."
	}
	return ""
}

// Age returns completed years between birth and now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func validateAge(dateOfBirth string, now time.Time) string {
	if strings.TrimSpace(dateOfBirth) == "" {
		return "Date of birth is required."
	}
	birth, err := time.Parse(DateLayout, dateOfBirth)
	if err != nil {
		return "Date of birth must be a valid date (YYYY-MM-DD)."
	}
	if Age(birth, now) < MinimumAge {
		return "You must be at least 15 years old."
	}
	return ""
}

// ValidateIDVerification checks step 2. A passport needs the front only.
func ValidateIDVerification(f Form) IDVerificationErrors {
	var errs IDVerificationErrors

	if strings.TrimSpace(string(f.IDType)) == "" {
		errs.IDType = "Please select an ID type."
		return errs
	}
	if !f.IDType.Valid() {
		errs.IDType = "Please select a supported ID type."
		return errs
	}

	if f.IDType.IsPassport() {
		if isBlank(f.IDFront) {
			errs.ID = "Please capture an image of your passport."
		}
		return errs
	}

	if isBlank(f.IDFront) {
		errs.IDFront = "Please capture the front image of your ID."
	}
	if isBlank(f.IDBack) {
		errs.IDBack = "Please capture the back image of your ID."
	}
	if errs.IDFront != "" || errs.IDBack != "" {
		errs.ID = "Please capture both images of your ID."
	}
	return errs
}

// ValidateReview checks the selfie before the review step.
func ValidateReview(f Form) ReviewErrors {
	if isBlank(f.Selfie) {
		return ReviewErrors{Selfie: "Please take a selfie first."}
	}
	if f.IDFront != nil && *f.Selfie == *f.IDFront {
		return ReviewErrors{Selfie: "The selfie image cannot be the same as the ID photo. Please upload a valid ID document and take a new selfie."}
	}
	return ReviewErrors{}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
