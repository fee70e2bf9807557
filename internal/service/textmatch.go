package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/retroconnect/idverify/internal/domain"
)

// CheckIDType reports whether the document text carries every keyword of the
// rule matching the declared type. Types without a rule always pass.
func CheckIDType(idType, ocrText string) bool {
	rule, ok := domain.KeywordsFor(idType)
	if !ok {
		return true
	}

	text := strings.ToLower(ocrText)
	for _, keyword := range rule.Keywords {
		if !strings.Contains(text, keyword) {
			return false
		}
	}
	return true
}

// MatchIdentityText checks the claimed identity against the document text:
// every token of both names, the gender and the digits of the birth date.
func MatchIdentityText(user domain.UserData, ocrText string) bool {
	if ocrText == "" {
		return false
	}

	folded := foldText(ocrText)
	if !namesMatch(user.FirstName, folded) || !namesMatch(user.LastName, folded) {
		return false
	}

	gender := strings.ToLower(strings.TrimSpace(user.Gender))
	if gender == "" || !strings.Contains(strings.ToLower(ocrText), gender) {
		return false
	}

	// birth digits must appear contiguously and in declared order
	dob := digitsOnly(user.DateOfBirth)
	if dob == "" {
		return false
	}
	return strings.Contains(digitsOnly(ocrText), dob)
}

func namesMatch(name, foldedText string) bool {
	parts := strings.Fields(foldText(name))
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if !strings.Contains(foldedText, part) {
			return false
		}
	}
	return true
}

// foldText lowercases and strips combining marks so "Peña" matches "PENA".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
