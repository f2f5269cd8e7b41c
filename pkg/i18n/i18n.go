package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init loads the embedded locales. Safe to call more than once.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if bundle != nil {
		return
	}
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			continue
		}
		_, _ = b.ParseMessageFileBytes(data, e.Name())
	}
	bundle = b
}

// Load adds an external message file (e.g. active.fr.json) on top of the embedded ones.
func Load(file string) error {
	Init()
	mu.Lock()
	defer mu.Unlock()
	if _, err := bundle.LoadMessageFile(file); err != nil {
		return fmt.Errorf("load locale %s: %w", file, err)
	}
	return nil
}

// T translates messageID for the first matching language in langs
// (Accept-Language values or tags). Unknown IDs are returned unchanged.
func T(messageID string, langs ...string) string {
	Init()
	mu.RLock()
	loc := goi18n.NewLocalizer(bundle, langs...)
	mu.RUnlock()

	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
