package domain

import "strings"

// IDType is the document a registrant declares in the ID step.
type IDType string

const (
	IDTypeNationalCard   IDType = "National ID (Card Type)"
	IDTypeNationalPaper  IDType = "National ID (Paper Type) / Digital National ID"
	IDTypePassport       IDType = "Passport"
	IDTypeHDMF           IDType = "HDMF (Pag-Ibig Loyalty Plus)"
	IDTypeDriversLicense IDType = "Driver's License"
	IDTypePostal         IDType = "Philippine Postal ID"
	IDTypePRC            IDType = "PRC ID"
	IDTypeUMID           IDType = "UMID"
	IDTypeSSS            IDType = "SSS ID"
	IDTypeSchool         IDType = "School ID"
)

// IDTypes lists the accepted documents in display order.
func IDTypes() []IDType {
	return []IDType{
		IDTypeNationalCard,
		IDTypeNationalPaper,
		IDTypePassport,
		IDTypeHDMF,
		IDTypeDriversLicense,
		IDTypePostal,
		IDTypePRC,
		IDTypeUMID,
		IDTypeSSS,
		IDTypeSchool,
	}
}

// IsPassport reports whether only a front capture is required.
func (t IDType) IsPassport() bool {
	return t == IDTypePassport
}

// Valid reports whether t is one of the accepted documents.
func (t IDType) Valid() bool {
	for _, known := range IDTypes() {
		if t == known {
			return true
		}
	}
	return false
}

func (t IDType) String() string {
	return string(t)
}

// IDKeywordRule ties a fragment of the declared ID type to the words the
// document text must contain.
type IDKeywordRule struct {
	Key      string
	Keywords []string
}

// IDKeywordRules is evaluated in order; the first key contained in the
// lowercased declared type wins.
var IDKeywordRules = []IDKeywordRule{
	{Key: "passport", Keywords: []string{"passport"}},
	{Key: "national id", Keywords: []string{"national id", "philsys"}},
	{Key: "driver's license", Keywords: []string{"driver's license", "land transportation office"}},
	{Key: "prc id", Keywords: []string{"professional regulation commission"}},
	{Key: "umid", Keywords: []string{"unified multi-purpose id"}},
	{Key: "sss id", Keywords: []string{"social security system"}},
	{Key: "school id", Keywords: []string{"school", "university", "college", "campus"}},
	{Key: "philippine postal id", Keywords: []string{"postal id"}},
	{Key: "hdmf (pag-ibig loyalty plus)", Keywords: []string{"pag-ibig", "hdmf"}},
}

// KeywordsFor returns the keyword rule matching a declared ID type, if any.
func KeywordsFor(idType string) (IDKeywordRule, bool) {
	lower := strings.ToLower(idType)
	for _, rule := range IDKeywordRules {
		if strings.Contains(lower, rule.Key) {
			return rule, true
		}
	}
	return IDKeywordRule{}, false
}
