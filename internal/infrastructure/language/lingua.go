package language

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"NewsVerdict/internal/ports"
)

// LinguaDetector detects the language of an article among a fixed set.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

var _ ports.LanguageDetector = (*LinguaDetector)(nil)

// NewLinguaDetector builds a detector restricted to the given ISO 639-1 codes.
func NewLinguaDetector(codes []string) (*LinguaDetector, error) {
	languages, err := resolveLanguages(codes)
	if err != nil {
		return nil, err
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("language detection needs at least 2 languages, got %d", len(languages))
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &LinguaDetector{detector: detector}, nil
}

// Detect returns the lowercase ISO 639-1 code of the most likely language.
func (d *LinguaDetector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

func resolveLanguages(codes []string) ([]lingua.Language, error) {
	byCode := make(map[string]lingua.Language)
	for _, lang := range lingua.AllLanguages() {
		byCode[strings.ToLower(lang.IsoCode639_1().String())] = lang
	}

	seen := make(map[lingua.Language]struct{}, len(codes))
	result := make([]lingua.Language, 0, len(codes))
	for _, code := range codes {
		lang, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
		if !ok {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		result = append(result, lang)
	}
	return result, nil
}
