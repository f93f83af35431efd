// Package i18n localizes validation finding codes for report rendering.
package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for finding codes.
// data provides optional metadata appended to the message (for example,
// "suggestion" or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.text(code)
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(msg)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(data[k])
	}
	b.WriteString(")")
	return b.String()
}

func (t dictTranslator) text(code string) string {
	switch t.lang {
	case "de":
		switch code {
		case "required":
			return "Pflichtfeld fehlt"
		case "recommended":
			return "empfohlenes Feld fehlt"
		case "invalid_type":
			return "ungültiger Typ"
		case "pattern":
			return "ungültiges Format"
		case "too_short":
			return "zu kurz"
		case "too_long":
			return "zu lang"
		case "too_few_items":
			return "zu wenige Einträge"
		case "too_many_items":
			return "zu viele Einträge"
		case "invalid_url":
			return "ungültige URL"
		case "invalid_name":
			return "ungültiger Name"
		case "invalid_version":
			return "ungültige Versionsnummer"
		case "missing_author":
			return "kein Autor angegeben"
		case "unknown_role":
			return "unbekannte Rolle"
		case "missing_unit":
			return "Einheit fehlt"
		case "unit_path_missing":
			return "Einheit ohne Vokabular-Verweis"
		case "dimensionless_unit":
			return "dimensionslose Einheit auf Messwert"
		case "unknown_field_type":
			return "unbekannter Feldtyp"
		case "preferred_format":
			return "Format nicht bevorzugt"
		case "missing_concept":
			return "Ontologie-Zuordnung fehlt"
		case "mixed_types":
			return "gemischte Typen in Spalte"
		case "schema_mismatch":
			return "Daten widersprechen dem Schema"
		case "schema_gap":
			return "Schema und Daten decken sich nicht"
		case "missing_data":
			return "fehlende Werte"
		case "duplicate_rows":
			return "doppelte Zeilen"
		case "dataset_stats":
			return "Datensatzstatistik"
		case "profile_violation":
			return "Deskriptor verletzt das Profil"
		case "too_few_keywords":
			return "zu wenige Schlagwörter"
		}
	default: // "en"
		switch code {
		case "required":
			return "required field missing"
		case "recommended":
			return "recommended field missing"
		case "invalid_type":
			return "invalid type"
		case "pattern":
			return "invalid format"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "too_few_items":
			return "too few items"
		case "too_many_items":
			return "too many items"
		case "invalid_url":
			return "invalid URL"
		case "invalid_name":
			return "invalid name"
		case "invalid_version":
			return "invalid version"
		case "missing_author":
			return "no author listed"
		case "unknown_role":
			return "unknown role"
		case "missing_unit":
			return "unit missing"
		case "unit_path_missing":
			return "unit lacks a vocabulary reference"
		case "dimensionless_unit":
			return "dimensionless unit on a measurement"
		case "unknown_field_type":
			return "unknown field type"
		case "preferred_format":
			return "format not preferred"
		case "missing_concept":
			return "ontology mapping missing"
		case "mixed_types":
			return "mixed types in column"
		case "schema_mismatch":
			return "data contradicts the schema"
		case "schema_gap":
			return "schema and data do not line up"
		case "missing_data":
			return "missing values"
		case "duplicate_rows":
			return "duplicate rows"
		case "dataset_stats":
			return "dataset statistics"
		case "profile_violation":
			return "descriptor violates the profile"
		case "too_few_keywords":
			return "too few keywords"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"de").
func SetLanguage(lang string) {
	if lang != "de" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
