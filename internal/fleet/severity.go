package fleet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Incident tags arrive from different firmware generations, some with
// accented Spanish ("crítico"), some without. Keyword sets are checked in
// severity order and the first hit wins, so a tag matching both a critical
// and a moderate keyword classifies as critical.
var severityKeywords = []struct {
	severity Severity
	keywords []string
}{
	{SeverityCritical, []string{"curva_brusca", "punto_interes", "critico"}},
	{SeverityDangerous, []string{"peligroso", "danger", "high"}},
	{SeverityModerate, []string{"moderado", "warning", "moderate"}},
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldTag(tag string) string {
	folded, _, err := transform.String(accentFolder, tag)
	if err != nil {
		folded = tag
	}
	return strings.ToLower(folded)
}

// ClassifySeverity maps an incident type tag to a severity bucket by
// case- and accent-insensitive substring match. Unmatched tags are light.
func ClassifySeverity(typeTag string) Severity {
	tag := foldTag(typeTag)

	for _, set := range severityKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(tag, kw) {
				return set.severity
			}
		}
	}
	return SeverityLight
}
