package m3u

import (
	"regexp"
	"strings"
)

// Reserved attribute keys exposed through typed accessors on [Record].
const (
	AttrTvgID      = "tvg-id"
	AttrTvgLogo    = "tvg-logo"
	AttrTvgName    = "tvg-name"
	AttrGroupTitle = "group-title"
)

var (
	attributeRegex    = regexp.MustCompile(`(\w*-\w*)=(?:"([^"\r\n]*)"|'([^'\r\n]*)')`)
	attributeKeyRegex = regexp.MustCompile(`^\w*-\w*$`)

	// The #EXTINF attribute fragment ends at the first comma, so a value
	// holding one could not be read back.
	valueCleaner = strings.NewReplacer(`"`, "", ",", "", "\r", " ", "\n", " ")
)

// Attribute is a single key="value" pair from an #EXTINF line.
type Attribute struct {
	Key   string
	Value string
}

// ParseAttributes extracts key="value" and key='value' pairs from an attribute fragment.
//
// Pairs are returned in the order they appear. Duplicate keys are kept; callers
// that store them in a map get last-wins semantics.
func ParseAttributes(fragment string) []Attribute {
	if fragment == "" {
		return nil
	}

	matches := attributeRegex.FindAllStringSubmatch(fragment, -1)
	attrs := make([]Attribute, 0, len(matches))
	for _, match := range matches {
		value := match[2]
		if strings.HasPrefix(match[0][len(match[1])+1:], "'") {
			value = match[3]
		}
		attrs = append(attrs, Attribute{
			Key:   strings.TrimSpace(match[1]),
			Value: strings.TrimSpace(value),
		})
	}

	return attrs
}

// FormatAttributes renders pairs as space separated key="value" text.
func FormatAttributes(attrs []Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, attr.Key+`="`+attr.Value+`"`)
	}
	return strings.Join(parts, " ")
}

// validAttribute reports whether the pair survives a write/read round trip.
func validAttribute(key, value string) bool {
	if !attributeKeyRegex.MatchString(key) {
		return false
	}
	return !strings.ContainsAny(value, "\",\r\n")
}

// attrText drops the characters [validAttribute] rejects.
func attrText(s string) string {
	return strings.TrimSpace(valueCleaner.Replace(s))
}
