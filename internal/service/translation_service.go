package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TranslationLookup returns a stored translation of a term
type TranslationLookup interface {
	Translation(term, lang string) (string, bool)
}

// Languages with translation tables
var supportedLanguages = map[string]bool{"hi": true, "kn": true}

// Keys holding dates and measurements, never translated
var untranslatedKeys = map[string]bool{
	"date":             true,
	"generated_at":     true,
	"price":            true,
	"confidence_lower": true,
	"confidence_upper": true,
	"temperature":      true,
	"humidity":         true,
	"ph":               true,
	"rainfall":         true,
	"volatility":       true,
}

// Translator maps known agricultural terms to Hindi and Kannada, passing
// everything else through unchanged
type Translator struct {
	terms TranslationLookup
}

// NewTranslator creates a translator over a term table
func NewTranslator(terms TranslationLookup) *Translator {
	return &Translator{terms: terms}
}

// Supported reports whether lang has a translation table
func (t *Translator) Supported(lang string) bool {
	return supportedLanguages[lang]
}

// Translate returns text in lang, or text itself when no translation exists
func (t *Translator) Translate(text, lang string) string {
	if !t.Supported(lang) {
		return text
	}
	if tr, ok := t.terms.Translation(strings.TrimSpace(text), lang); ok {
		return tr
	}
	return text
}

// TranslateResponse walks a decoded JSON value and translates string fields
// of objects. Strings directly inside arrays are left alone.
func (t *Translator) TranslateResponse(value interface{}, lang string) interface{} {
	if !t.Supported(lang) {
		return value
	}

	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, field := range v {
			switch {
			case untranslatedKeys[key]:
				out[key] = field
			case isString(field):
				out[key] = t.Translate(field.(string), lang)
			default:
				out[key] = t.TranslateResponse(field, lang)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			if isString(item) {
				out[i] = item
				continue
			}
			out[i] = t.TranslateResponse(item, lang)
		}
		return out
	default:
		return value
	}
}

// Localize round-trips a typed response through JSON and translates it
func (t *Translator) Localize(response interface{}, lang string) (interface{}, error) {
	if !t.Supported(lang) {
		return response, nil
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("translation: failed to encode response: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("translation: failed to decode response: %w", err)
	}
	return t.TranslateResponse(generic, lang), nil
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}
