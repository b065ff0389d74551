package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var supportedRegions = []string{
	"US",
	"GB",
	"IL",
}

func collapseWhitespace(s string) string {
	var result strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

var (
	textPipeline  = Pipeline{strings.TrimSpace, collapseWhitespace}
	lowerPipeline = Pipeline{strings.TrimSpace, collapseWhitespace, strings.ToLower}
)

// SanitizeText is used for names, titles, locations and notes.
func SanitizeText(input string) string {
	return textPipeline.Apply(input)
}

func SanitizeRole(input string) string {
	return lowerPipeline.Apply(input)
}

func SanitizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// SanitizePhone formats a phone number as E.164. A number that no supported
// region accepts is returned trimmed so that validation reports it.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsPossibleNumberWithReason(parsed) == phonenumbers.IS_POSSIBLE {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}

// SanitizeIDs trims every id and removes blanks and duplicates, keeping the
// first occurrence order.
func SanitizeIDs(ids []string) []string {
	return SanitizeSlice(ids, strings.TrimSpace)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
