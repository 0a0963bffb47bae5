package pipeline

import (
	"regexp"
	"strings"
)

const (
	maxKeywords        = 5
	maxPatternKeywords = 3
)

// keywordVocabulary is the fixed domain vocabulary, in the order matches
// are reported.
var keywordVocabulary = []string{
	"crispr",
	"car-t",
	"mrna",
	"gene therapy",
	"gene editing",
	"immunotherapy",
	"monoclonal antibody",
	"biosimilar",
	"clinical trial",
	"fda",
	"biomarker",
	"oncology",
	"rare disease",
	"vaccine",
	"small molecule",
	"cell therapy",
	"antibody-drug conjugate",
	"protein degradation",
	"precision medicine",
	"drug discovery",
}

// compoundCodePattern matches drug-code-like tokens: an uppercase prefix
// with a hyphenated number (CTX-001, AB-123) or a capitalized word directly
// followed by digits (Keytruda21 style identifiers).
var compoundCodePattern = regexp.MustCompile(`\b([A-Z]{2,}-[0-9]+|[A-Z][a-z]+[0-9]+)\b`)

// ExtractKeywords derives a deterministic tag set from text: vocabulary
// matches first, in vocabulary order, then up to three compound-code
// matches, capped at five tags total.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	keywords := make([]string, 0, maxKeywords)
	for _, term := range keywordVocabulary {
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
		}
	}

	seen := make(map[string]bool, maxPatternKeywords)
	codes := compoundCodePattern.FindAllString(text, -1)
	added := 0
	for _, code := range codes {
		if added >= maxPatternKeywords {
			break
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		keywords = append(keywords, code)
		added++
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
