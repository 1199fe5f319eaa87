package recommendation

// DefaultLocale is used when a caller supplies no locale.
const DefaultLocale = "en"

// Locales is the fixed set of languages explanations can be generated
// in.
var Locales = []string{"en", "es", "fr", "de", "zh", "ja"}

// IsSupportedLocale reports whether explanations can be generated for
// the given locale.
func IsSupportedLocale(locale string) bool {
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}
