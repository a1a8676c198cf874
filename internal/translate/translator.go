package translate

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyTranslation = errors.New("empty translation")

// Translator renders text into the target language. Failures are expected
// and are never fatal to callers.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, text, targetLang string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return f(ctx, text, targetLang)
}

// Glossary is an offline translator backed by a static table:
// keyword -> language code -> translation. Lookups are case-insensitive on
// the keyword.
type Glossary map[string]map[string]string

func (g Glossary) Translate(_ context.Context, text, targetLang string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	for k, byLang := range g {
		if strings.ToLower(k) != key {
			continue
		}
		if out := strings.TrimSpace(byLang[targetLang]); out != "" {
			return out, nil
		}
	}
	return "", ErrEmptyTranslation
}
