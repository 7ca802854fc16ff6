package domain

import "strings"

// chatAddressSuffix is the contact-address marker required by the messaging
// gateway for individual chats.
const chatAddressSuffix = "@c.us"

// countryCallingCodes maps country names (English and Arabic) and ISO codes to
// international calling codes. Used to complete local numbers that arrive
// without a country prefix.
var countryCallingCodes = map[string]string{
	"Egypt": "20", "مصر": "20", "EG": "20",
	"Saudi Arabia": "966", "السعودية": "966", "SA": "966",
	"United Arab Emirates": "971", "الإمارات": "971", "UAE": "971", "AE": "971",
	"Kuwait": "965", "الكويت": "965", "KW": "965",
	"Qatar": "974", "قطر": "974", "QA": "974",
	"Bahrain": "973", "البحرين": "973", "BH": "973",
	"Oman": "968", "عمان": "968", "OM": "968",
	"Jordan": "962", "الأردن": "962", "JO": "962",
	"Lebanon": "961", "لبنان": "961", "LB": "961",
	"Palestine": "970", "فلسطين": "970", "PS": "970",
	"Iraq": "964", "العراق": "964", "IQ": "964",
	"Yemen": "967", "اليمن": "967", "YE": "967",
	"Syria": "963", "سوريا": "963", "SY": "963",
	"Morocco": "212", "المغرب": "212", "MA": "212",
	"Algeria": "213", "الجزائر": "213", "DZ": "213",
	"Tunisia": "216", "تونس": "216", "TN": "216",
	"Libya": "218", "ليبيا": "218", "LY": "218",
	"Sudan": "249", "السودان": "249", "SD": "249",
}

// FormatChatAddress converts heterogeneous phone input plus an optional country
// hint into the canonical gateway contact address. An empty result means the
// recipient cannot be notified; callers must not treat that as an error.
//
// Rules, in order: a leading '+' means the digits already include a country
// code; otherwise one trunk '0' is stripped; digits that already start with a
// known calling code are kept as-is (no double prefixing); otherwise a resolvable
// country hint supplies the code; otherwise the number is used best effort.
func FormatChatAddress(phone, country string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}

	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return digitsOnly(phone) + chatAddressSuffix
	}

	cleaned := digitsOnly(phone)
	cleaned = strings.TrimPrefix(cleaned, "0")
	if cleaned == "" {
		return ""
	}

	if !hasKnownCallingCode(cleaned) {
		if code, ok := countryCallingCodes[strings.TrimSpace(country)]; ok {
			cleaned = code + cleaned
		}
	}
	return cleaned + chatAddressSuffix
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasKnownCallingCode(digits string) bool {
	for _, code := range countryCallingCodes {
		if strings.HasPrefix(digits, code) {
			return true
		}
	}
	return false
}
