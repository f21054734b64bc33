// Package i18n holds the Swedish/English display-name tables used by the
// export encoders (question-type names, difficulty names, column headers).
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	initOnce sync.Once
	bundle   *i18n.Bundle
	initErr  error
)

func load() error {
	initOnce.Do(func() {
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			initErr = fmt.Errorf("read locales dir: %w", err)
			return
		}
		for _, e := range entries {
			data, err := localeFS.ReadFile("locales/" + e.Name())
			if err != nil {
				initErr = fmt.Errorf("read locale file %s: %w", e.Name(), err)
				return
			}
			if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
				initErr = fmt.Errorf("parse locale file %s: %w", e.Name(), err)
				return
			}
		}
	})
	return initErr
}

// LookupMessage resolves a message id in the given language. The second
// return is false when no translation exists; a lookup miss never panics.
func LookupMessage(lang, msgID string) (string, bool) {
	if err := load(); err != nil {
		return "", false
	}
	loc := i18n.NewLocalizer(bundle, lang)
	s, err := loc.Localize(&i18n.LocalizeConfig{MessageID: msgID})
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// T resolves a message id, falling back to the id itself on a miss.
func T(lang, msgID string) string {
	if s, ok := LookupMessage(lang, msgID); ok {
		return s
	}
	return msgID
}
