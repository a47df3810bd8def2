package album

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Well-known questionnaire keys. The pipeline passes every answer through to
// the planning prompt; these are the ones it reads directly.
const (
	KeyOccasion       = "occasion"
	KeyStyle          = "style"
	KeyNames          = "names"
	KeySpecialMessage = "specialMessage"
	KeyTitle          = "title"
)

// Defaults applied when an answer is missing or blank.
const (
	DefaultOccasion = "special moments"
	DefaultStyle    = "classic"
)

// Questionnaire is the free-form answer record from the wizard. Values are
// not validated beyond defaulting missing fields.
type Questionnaire map[string]string

func (q Questionnaire) get(key string) string {
	if q == nil {
		return ""
	}
	return strings.TrimSpace(q[key])
}

// Occasion returns the occasion answer or DefaultOccasion.
func (q Questionnaire) Occasion() string {
	if v := q.get(KeyOccasion); v != "" {
		return v
	}
	return DefaultOccasion
}

// Style returns the visual style answer, lower-cased, or DefaultStyle.
func (q Questionnaire) Style() string {
	if v := q.get(KeyStyle); v != "" {
		return strings.ToLower(v)
	}
	return DefaultStyle
}

// Names returns the names answer, possibly empty.
func (q Questionnaire) Names() string { return q.get(KeyNames) }

// SpecialMessage returns the dedication text, possibly empty.
func (q Questionnaire) SpecialMessage() string { return q.get(KeySpecialMessage) }

// Title returns an explicit album title if the user gave one, otherwise a
// title built from the names and occasion.
func (q Questionnaire) Title() string {
	if v := q.get(KeyTitle); v != "" {
		return v
	}
	occasion := q.Occasion()
	r, size := utf8.DecodeRuneInString(occasion)
	occasion = string(unicode.ToUpper(r)) + occasion[size:]
	if names := q.Names(); names != "" {
		return names + " · " + occasion
	}
	return occasion
}

// Keys returns the answered keys in sorted order so prompts built from the
// questionnaire are stable.
func (q Questionnaire) Keys() []string {
	keys := make([]string, 0, len(q))
	for k, v := range q {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
