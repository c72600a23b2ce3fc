// Package i18n formats user-facing messages in English, German or Turkish.
//
// A Localizer is an explicit object owned by the caller. It holds the active
// language and the callbacks to run when the language changes, and it
// satisfies pdf.Messages so it can be handed to the extraction pipeline.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/a3tai/pdf-annotations/internal/pdf"
)

// supported lists the available languages; the first one is the fallback
var supported = []language.Tag{
	language.English,
	language.German,
	language.Turkish,
}

var languageNames = map[language.Tag]string{
	language.English: "English",
	language.German:  "Deutsch",
	language.Turkish: "Türkçe",
}

var (
	matcher = language.NewMatcher(supported)

	catalogOnce    sync.Once
	catalogBuilder *catalog.Builder
	catalogErr     error
)

func loadCatalog() (*catalog.Builder, error) {
	catalogOnce.Do(func() {
		catalogBuilder, catalogErr = newCatalog()
	})
	return catalogBuilder, catalogErr
}

var _ pdf.Messages = (*Localizer)(nil)

// Localizer formats messages in its active language
type Localizer struct {
	mu        sync.RWMutex
	tag       language.Tag
	printer   *message.Printer
	observers map[int]func(language.Tag)
	nextID    int
}

// NewLocalizer creates a localizer for the supported language closest to tag
func NewLocalizer(tag language.Tag) (*Localizer, error) {
	if _, err := loadCatalog(); err != nil {
		return nil, err
	}

	l := &Localizer{observers: make(map[int]func(language.Tag))}
	l.tag = Match(tag)
	l.printer = newPrinter(l.tag)
	return l, nil
}

func newPrinter(tag language.Tag) *message.Printer {
	cat, _ := loadCatalog()
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Language returns the active language
func (l *Localizer) Language() language.Tag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tag
}

// SetLanguage switches to the supported language closest to tag and notifies
// the registered callbacks if the language changed. It returns the language
// now in effect.
func (l *Localizer) SetLanguage(tag language.Tag) language.Tag {
	matched := Match(tag)

	l.mu.Lock()
	if matched == l.tag {
		l.mu.Unlock()
		return matched
	}
	l.tag = matched
	l.printer = newPrinter(matched)

	callbacks := make([]func(language.Tag), 0, len(l.observers))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.observers[id]; ok {
			callbacks = append(callbacks, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn(matched)
	}
	return matched
}

// OnChange registers fn to run after every language change, in registration
// order. The returned function removes the registration.
func (l *Localizer) OnChange(fn func(language.Tag)) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.observers[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.observers, id)
	}
}

// Sprintf formats the message registered under key in the active language.
// Unknown keys are used as the format string.
func (l *Localizer) Sprintf(key string, args ...interface{}) string {
	l.mu.RLock()
	p := l.printer
	l.mu.RUnlock()
	return p.Sprintf(key, args...)
}

// SupportedLanguages returns the available languages
func SupportedLanguages() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// LanguageName returns the native name of a supported language
func LanguageName(tag language.Tag) string {
	if name, ok := languageNames[Match(tag)]; ok {
		return name
	}
	return tag.String()
}

// Match returns the supported language closest to tag, English if none is close
func Match(tag language.Tag) language.Tag {
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return supported[0]
	}
	return supported[index]
}

// ParseLanguage parses a BCP 47 tag or a POSIX locale such as de_DE.UTF-8
func ParseLanguage(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, fmt.Errorf("no language in locale %q", s)
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", s, err)
	}
	return tag, nil
}

// DetectLanguage picks the language from LC_ALL, LC_MESSAGES or LANG,
// falling back to English.
func DetectLanguage() language.Tag {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(env)
		if value == "" {
			continue
		}
		tag, err := ParseLanguage(value)
		if err != nil {
			return supported[0]
		}
		return Match(tag)
	}
	return supported[0]
}
