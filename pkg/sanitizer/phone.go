package sanitizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const Region = "IN"

var (
	reLocalPhone     = regexp.MustCompile(`^\d{10}$`)
	reWhatsAppNumber = regexp.MustCompile(`^\d{12}$`)
	rePhoneNoise     = regexp.MustCompile(`[\s\-().]`)
)

// NormalizePhone strips spacing and punctuation. It does not change the digits.
func NormalizePhone(phone string) string {
	return rePhoneNoise.ReplaceAllString(strings.TrimSpace(phone), "")
}

// IsLocalPhone reports whether phone is exactly ten digits.
func IsLocalPhone(phone string) bool {
	return reLocalPhone.MatchString(phone)
}

// WhatsAppRecipient converts a stored local number into the 91XXXXXXXXXX form
// the messaging provider expects. Numbers that do not yield twelve digits are rejected.
func WhatsAppRecipient(phone string) (string, bool) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return "", false
	}

	parsed, err := phonenumbers.Parse(phone, Region)
	if err != nil {
		return "", false
	}

	recipient := strconv.Itoa(int(parsed.GetCountryCode())) + strconv.FormatUint(parsed.GetNationalNumber(), 10)
	if !reWhatsAppNumber.MatchString(recipient) {
		return "", false
	}
	return recipient, true
}

// WhatsAppRecipients maps phones to recipients, dropping invalid and duplicate numbers.
func WhatsAppRecipients(phones []string) []string {
	return NormalizeStringSlice(phones, func(p string) string {
		r, _ := WhatsAppRecipient(p)
		return r
	})
}
