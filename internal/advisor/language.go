package advisor

import "strings"

// Vietnamese-specific letters that never occur in English text.
var vietnameseRunes = []rune{'ă', 'â', 'ê', 'ô', 'ơ', 'ư', 'đ'}

// DetectLanguage resolves the reply language from an explicit tag or from
// Vietnamese letters in the message. Anything else is English.
func DetectLanguage(message, tag string) string {
	if strings.EqualFold(tag, "vi") {
		return "vi"
	}
	lower := strings.ToLower(message)
	for _, r := range vietnameseRunes {
		if strings.ContainsRune(lower, r) {
			return "vi"
		}
	}
	return "en"
}
