package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"telanews/internal/store"
)

var jsonRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON pulls the first JSON object out of a model response that
// may be wrapped in prose or markdown fences.
func ExtractJSON(text string) string {
	if match := jsonRe.FindString(text); match != "" {
		return match
	}
	return text
}

// allowedKeys is the closed set of classification fields. Anything else
// the model emits is dropped.
var allowedKeys = map[string]bool{
	"death_related": true, "political_related": true, "woke_related": true,
	"spoilers": true, "sensitive_theme": true, "contains_video": true,
	"is_news_content": true, "relevance": true, "brazil_interest": true,
	"breaking_news": true, "audience_age_rating": true, "regional_focus": true,
	"country_focus": true, "ideological_alignment": true, "entity_type": true,
	"entity_name": true, "duplication": true,
}

// ParseClassification decodes a model verdict. Unknown keys are ignored,
// missing keys stay nil on the returned struct.
func ParseClassification(raw string) (*store.Classification, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	c := &store.Classification{}
	for key, value := range fields {
		if !allowedKeys[key] {
			continue
		}
		if err := assignField(c, key, value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return c, nil
}

func assignField(c *store.Classification, key string, value json.RawMessage) error {
	if string(value) == "null" {
		return nil
	}
	switch key {
	case "death_related":
		return decodeBool(value, &c.DeathRelated)
	case "political_related":
		return decodeBool(value, &c.PoliticalRelated)
	case "woke_related":
		return decodeBool(value, &c.WokeRelated)
	case "spoilers":
		return decodeBool(value, &c.Spoilers)
	case "sensitive_theme":
		return decodeBool(value, &c.SensitiveTheme)
	case "contains_video":
		return decodeBool(value, &c.ContainsVideo)
	case "is_news_content":
		return decodeBool(value, &c.IsNewsContent)
	case "brazil_interest":
		return decodeBool(value, &c.BrazilInterest)
	case "breaking_news":
		return decodeBool(value, &c.BreakingNews)
	case "duplication":
		return decodeBool(value, &c.Duplication)
	case "relevance":
		return decodeString(value, &c.Relevance)
	case "regional_focus":
		return decodeString(value, &c.RegionalFocus)
	case "country_focus":
		return decodeString(value, &c.CountryFocus)
	case "ideological_alignment":
		return decodeString(value, &c.IdeologicalAlignment)
	case "entity_type":
		return decodeString(value, &c.EntityType)
	case "entity_name":
		return decodeString(value, &c.EntityName)
	case "audience_age_rating":
		// Arrives as either a string ("L") or a bare number (10..18).
		return decodeAgeRating(value, &c.AudienceAgeRating)
	}
	return nil
}

func decodeBool(raw json.RawMessage, dst **bool) error {
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func decodeString(raw json.RawMessage, dst **string) error {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func decodeAgeRating(raw json.RawMessage, dst **string) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = &s
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("neither string nor number: %s", string(raw))
	}
	v := strconv.Itoa(n)
	*dst = &v
	return nil
}

// ParseRewrite decodes the rewrite response shape and trims its fields.
// Blank fields are returned as-is; completeness is the caller's call.
func ParseRewrite(raw string) (title, subhead, content string, err error) {
	var payload struct {
		Title   string `json:"title"`
		Subhead string `json:"subhead"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", "", "", fmt.Errorf("decode rewrite: %w", err)
	}
	return strings.TrimSpace(payload.Title), strings.TrimSpace(payload.Subhead), strings.TrimSpace(payload.Content), nil
}
