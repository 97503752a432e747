package heuristics

import (
	"regexp"
	"strings"
)

// Result caps.
const (
	MaxParties = 5
	MaxDates   = 10
	MaxAmounts = 10
)

const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?`

var (
	betweenParties = regexp.MustCompile(`(?i)\bbetween\s+(.{3,80}?)(?:\s*\([^)]*\))?,?\s+and\s+(.{3,80}?)(?:\s*\([^)]*\))?(?:[,.;]|\s+\(|$)`)
	entityName     = regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:[ \t]+[A-Z][A-Za-z]+)*,?[ \t]+(?:Inc|LLC|Corp|Corporation|Ltd|LLP|GmbH|plc)\b\.?`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:day\s+of\s+)?` + months + `,?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b` + months + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	}

	moneyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[$€£]\s?\d+(?:,\d{3})*(?:\.\d{1,2})?(?:\s?(?:million|billion|thousand|k)\b)?`),
		regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP)\s?\d+(?:,\d{3})*(?:\.\d{1,2})?`),
		regexp.MustCompile(`(?i)\b\d+(?:,\d{3})*(?:\.\d{1,2})?\s?(?:dollars|USD|EUR|GBP|euros|pounds)\b`),
	}
)

// partyStopWords are leading words that mark a capture as prose rather than
// a name.
var partyStopWords = map[string]bool{
	"the parties": true, "the party": true, "this agreement": true, "us": true, "you": true,
}

// Parties returns up to MaxParties names found in "between X and Y"
// recitals and in company names carrying a legal suffix.
func Parties(text string) []string {
	seen := make(map[string]bool)
	parties := []string{}
	add := func(name string) {
		name = strings.Trim(strings.Join(strings.Fields(name), " "), ` ,;:"“”'`)
		key := strings.ToLower(name)
		if len(name) < 3 || len(name) > 100 || seen[key] || partyStopWords[key] || len(parties) == MaxParties {
			return
		}
		seen[key] = true
		parties = append(parties, name)
	}

	for _, m := range betweenParties.FindAllStringSubmatch(text, -1) {
		add(m[1])
		add(m[2])
	}
	for _, m := range entityName.FindAllString(text, -1) {
		add(m)
	}
	return parties
}

// Dates returns up to MaxDates date expressions in text order.
func Dates(text string) []string {
	return findAll(text, datePatterns, MaxDates)
}

// Amounts returns up to MaxAmounts monetary amounts in text order.
func Amounts(text string) []string {
	return findAll(text, moneyPatterns, MaxAmounts)
}
