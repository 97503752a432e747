package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var errNoJSON = errors.New("response contains no JSON")

// decodeField pulls key out of the first JSON value in resp. A bare array
// or string is accepted in place of the wrapping object. found is false
// when the object lacks the key or holds null.
func decodeField(resp, key string, out any) (found bool, err error) {
	raw, ok := extractJSON(resp)
	if !ok {
		if s := strings.TrimSpace(resp); strings.HasPrefix(s, `"`) {
			raw = json.RawMessage(s)
		} else {
			return false, errNoJSON
		}
	}

	value := raw
	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return false, fmt.Errorf("decode object: %w", err)
		}
		v, ok := obj[key]
		if !ok {
			return false, nil
		}
		value = v
	}
	if string(value) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func parseDocumentType(resp string) domain.Parsed[domain.DocumentType] {
	var s string
	found, err := decodeField(resp, "document_type", &s)
	if errors.Is(err, errNoJSON) {
		s, found, err = proseAnswer(cleanModelText(resp), "document type"), true, nil
	}
	if err != nil {
		return domain.Malformed[domain.DocumentType](err)
	}
	s = cleanModelText(s)
	if !found || s == "" {
		return domain.Absent[domain.DocumentType]()
	}
	return domain.Ok(domain.ParseDocumentType(s))
}

func parseSummary(resp string) domain.Parsed[string] {
	var s string
	found, err := decodeField(resp, "summary", &s)
	if errors.Is(err, errNoJSON) {
		s, found, err = proseAnswer(cleanModelText(resp), "summary"), true, nil
	}
	if err != nil {
		return domain.Malformed[string](err)
	}
	s = cleanModelText(s)
	if !found || s == "" {
		return domain.Absent[string]()
	}
	return domain.Ok(s)
}

// proseAnswer is the reply of a model that ignored the JSON instruction,
// with a leading "label:" removed.
func proseAnswer(resp, label string) string {
	text := strings.TrimSpace(resp)
	if len(text) > len(label) && strings.EqualFold(text[:len(label)], label) {
		if rest := strings.TrimLeft(text[len(label):], " \t"); strings.HasPrefix(rest, ":") {
			text = rest[1:]
		}
	}
	return text
}

// parseStringList handles parties, financial terms and dates. Non-string
// entries are flattened to text rather than rejected.
func parseStringList(resp, key string) domain.Parsed[[]string] {
	var items []json.RawMessage
	found, err := decodeField(resp, key, &items)
	if err != nil {
		return domain.Malformed[[]string](err)
	}
	if !found {
		return domain.Absent[[]string]()
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := cleanModelText(flattenJSON(item))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return domain.Absent[[]string]()
	}
	return domain.Ok(out)
}

func parseKeyTerms(resp string) domain.Parsed[[]domain.KeyTerm] {
	var items []domain.KeyTerm
	found, err := decodeField(resp, "key_terms", &items)
	if err != nil {
		return domain.Malformed[[]domain.KeyTerm](err)
	}
	for i := range items {
		items[i].Term = cleanModelText(items[i].Term)
		items[i].Definition = cleanModelText(items[i].Definition)
	}
	terms := domain.DedupeKeyTerms(items)
	if !found || len(terms) == 0 {
		return domain.Absent[[]domain.KeyTerm]()
	}
	return domain.Ok(terms)
}

func parseRisks(resp string) domain.Parsed[[]domain.Risk] {
	var items []struct {
		Title       string `json:"title"`
		Level       string `json:"level"`
		Description string `json:"description"`
	}
	found, err := decodeField(resp, "risks", &items)
	if err != nil {
		return domain.Malformed[[]domain.Risk](err)
	}

	risks := make([]domain.Risk, 0, len(items))
	for _, item := range items {
		title := cleanModelText(item.Title)
		if title == "" {
			continue
		}
		risks = append(risks, domain.Risk{
			Title:       title,
			Level:       domain.ParseRiskLevel(item.Level),
			Description: cleanModelText(item.Description),
		})
	}
	if !found || len(risks) == 0 {
		return domain.Absent[[]domain.Risk]()
	}
	return domain.Ok(risks)
}

// flattenJSON renders a JSON value as plain text. Objects become their
// string values in key order joined with " - ".
func flattenJSON(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := strings.TrimSpace(fmt.Sprint(obj[k])); v != "" && obj[k] != nil {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " - ")
	}

	if string(raw) == "null" {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
