// Package preferences holds the visitor's language and theme choice.
package preferences

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"affiliate-catalog/internal/storage"
)

const (
	LanguageKey = "lang"
	DarkKey     = "dark"
)

// Supported languages.
const (
	Indonesian = "id"
	English    = "en"
)

// Store is safe for concurrent use. Every change is written through.
type Store struct {
	mu     sync.RWMutex
	lang   string
	dark   bool
	kv     storage.KV
	logger *log.Logger
}

// New reads both keys once, falling back to the given defaults for missing
// or unreadable values.
func New(ctx context.Context, kv storage.KV, defaultLang string, defaultDark bool, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if !Supported(defaultLang) {
		defaultLang = Indonesian
	}
	s := &Store{lang: defaultLang, dark: defaultDark, kv: kv, logger: logger}

	lang, ok, err := kv.Get(ctx, LanguageKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", LanguageKey, err)
	}
	if ok && Supported(lang) {
		s.lang = lang
	}
	dark, ok, err := kv.Get(ctx, DarkKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", DarkKey, err)
	}
	if ok {
		if v, err := strconv.ParseBool(dark); err == nil {
			s.dark = v
		}
	}
	return s, nil
}

func Supported(lang string) bool {
	return lang == Indonesian || lang == English
}

func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

func (s *Store) Dark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	if !Supported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, LanguageKey, lang); err != nil {
		return fmt.Errorf("persist %s: %w", LanguageKey, err)
	}
	s.lang = lang
	return nil
}

// ToggleLanguage flips between id and en and returns the new value.
func (s *Store) ToggleLanguage(ctx context.Context) (string, error) {
	next := English
	if s.Language() == English {
		next = Indonesian
	}
	if err := s.SetLanguage(ctx, next); err != nil {
		return s.Language(), err
	}
	return next, nil
}

func (s *Store) SetDark(ctx context.Context, dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, DarkKey, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("persist %s: %w", DarkKey, err)
	}
	s.dark = dark
	return nil
}

func (s *Store) ToggleTheme(ctx context.Context) (bool, error) {
	next := !s.Dark()
	if err := s.SetDark(ctx, next); err != nil {
		s.logger.Printf("preferences: toggle theme error=%v", err)
		return !next, err
	}
	return next, nil
}
