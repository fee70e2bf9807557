package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retroconnect/idverify/internal/domain"
)

func TestCheckIDType(t *testing.T) {
	tests := []struct {
		name   string
		idType string
		text   string
		want   bool
	}{
		{"passport keyword present", "Passport", "REPUBLIC OF THE PHILIPPINES PASSPORT", true},
		{"passport keyword missing", "Passport", "LAND TRANSPORTATION OFFICE", false},
		{"driver's license needs both keywords", "Driver's License", "Driver's License\nLand Transportation Office", true},
		{"driver's license with one keyword", "Driver's License", "DRIVER'S LICENSE", false},
		{"school id requires all keywords", "School ID", "University of Manila Student", false},
		{"school id with all keywords", "School ID", "school university college campus", true},
		{"national card matches national id key", "National ID (Card Type)", "PhilSys National ID", true},
		{"postal id", "Philippine Postal ID", "Postal ID Card", true},
		{"pag-ibig", "HDMF (Pag-Ibig Loyalty Plus)", "PAG-IBIG FUND HDMF", true},
		{"unknown type passes", "Barangay Clearance", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckIDType(tt.idType, tt.text))
		})
	}
}

func TestMatchIdentityText(t *testing.T) {
	ocr := "REPUBLIKA NG PILIPINAS\nDELA CRUZ\nJUAN MIGUEL\nMALE\n1990/05/12"
	user := domain.UserData{FirstName: "Juan Miguel", LastName: "Dela Cruz", DateOfBirth: "1990-05-12", Gender: "Male"}

	tests := []struct {
		name   string
		mutate func(*domain.UserData)
		text   string
		want   bool
	}{
		{name: "all fields match", text: ocr, want: true},
		{name: "diacritics folded", mutate: func(u *domain.UserData) { u.LastName = "Délà Crúz" }, text: ocr, want: true},
		{name: "diacritics in document", mutate: func(u *domain.UserData) { u.FirstName = "Jose" }, text: ocr + "\nJOSÉ", want: true},
		{name: "first name token missing", mutate: func(u *domain.UserData) { u.FirstName = "Juan Pedro" }, text: ocr},
		{name: "gender mismatch", mutate: func(u *domain.UserData) { u.Gender = "Female" }, text: ocr},
		{name: "dob mismatch", mutate: func(u *domain.UserData) { u.DateOfBirth = "1991-05-12" }, text: ocr},
		{name: "empty last name", mutate: func(u *domain.UserData) { u.LastName = "  " }, text: ocr},
		{name: "empty text", text: ""},
		{name: "slash separated dob declared", mutate: func(u *domain.UserData) { u.DateOfBirth = "1990/05/12" }, text: ocr, want: true},
		{name: "dob with no separators declared", mutate: func(u *domain.UserData) { u.DateOfBirth = "19900512" }, text: ocr, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := user
			if tt.mutate != nil {
				tt.mutate(&u)
			}
			assert.Equal(t, tt.want, MatchIdentityText(u, tt.text))
		})
	}
}

func TestMatchIdentityText_Tokens(t *testing.T) {
	tests := []struct {
		name string
		user domain.UserData
		text string
		want bool
	}{
		{
			name: "every name token present among extra words",
			user: domain.UserData{FirstName: "Juan", LastName: "Dela Cruz", DateOfBirth: "2000-01-05", Gender: "Male"},
			text: "juan dela cruz santos male 20000105",
			want: true,
		},
		{
			name: "surname absent from document",
			user: domain.UserData{FirstName: "Juan", LastName: "Smith", DateOfBirth: "2000-01-05", Gender: "Male"},
			text: "juan dela cruz santos male 20000105",
		},
		{
			name: "dob digits in another order",
			user: domain.UserData{FirstName: "Juan", LastName: "Dela Cruz", DateOfBirth: "2000-01-05", Gender: "Male"},
			text: "JUAN DELA CRUZ MALE DOB 05012000",
		},
		{
			name: "dob split by separators in document",
			user: domain.UserData{FirstName: "Juan", LastName: "Dela Cruz", DateOfBirth: "2000-01-05", Gender: "Male"},
			text: "JUAN DELA CRUZ MALE DOB 2000-01-05",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchIdentityText(tt.user, tt.text))
		})
	}
}
