// Package analyzer - language.go detects the posting language with
// content-based heuristics over the two supported locales.
package analyzer

import (
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// detectionSample bounds how much text the indicator count examines.
const detectionSample = 1000

var spanishIndicators = []string{
	"se busca", "buscamos", "estamos buscando", "requisitos", "experiencia",
	"empresa", "ofrecemos", "perfil", "candidato", "trabajo",
	"desarrollo", "tecnología", "ingeniero", "arquitecto", "responsabilidades",
	"conocimientos", "formación", "titulación",
}

var englishIndicators = []string{
	"we are looking", "looking for", "requirements", "experience", "company",
	"we offer", "candidate", "profile", "development", "technology", "engineer",
	"architect", "responsibilities", "knowledge", "education", "degree",
}

// DetectLanguage classifies text as English or Spanish by counting indicator
// phrases. Ties and unrecognized content resolve to fallback rather than
// failing.
func DetectLanguage(text string, fallback types.Language) types.Language {
	sample := strings.ToLower(excerpt(text, detectionSample))

	spanish := 0
	for _, indicator := range spanishIndicators {
		if strings.Contains(sample, indicator) {
			spanish++
		}
	}
	english := 0
	for _, indicator := range englishIndicators {
		if strings.Contains(sample, indicator) {
			english++
		}
	}

	switch {
	case spanish > english:
		return types.LanguageSpanish
	case english > spanish:
		return types.LanguageEnglish
	default:
		return fallback
	}
}
