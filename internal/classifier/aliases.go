package classifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// AliasConfig is the YAML structure of a tag alias file.
type AliasConfig struct {
	Aliases []Alias `yaml:"aliases"`
}

// Alias maps a set of tag keywords onto a known kind.
type Alias struct {
	Kind     string   `yaml:"kind"`
	Contains []string `yaml:"contains"`
}

// Rules converts the aliases into classification rules.
func (a AliasConfig) Rules() ([]Rule, error) {
	rules := make([]Rule, 0, len(a.Aliases))
	var errs error
	for i, alias := range a.Aliases {
		build, ok := builders[alias.Kind]
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("alias %d: unknown kind %q", i, alias.Kind))
			continue
		}
		words := make([]string, 0, len(alias.Contains))
		for _, w := range alias.Contains {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			errs = errors.Join(errs, fmt.Errorf("alias %d: no keywords", i))
			continue
		}
		rules = append(rules, Rule{
			Name:  "alias:" + alias.Kind + ":" + strings.Join(words, "+"),
			Match: func(ev events.RawEvent) bool { return containsAll(ev.Tag, words) },
			Build: build,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return rules, nil
}

// WithAliases returns the built-in rules followed by the alias rules.
func WithAliases(cfg AliasConfig) ([]Rule, error) {
	aliasRules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	return append(DefaultRules(), aliasRules...), nil
}

// LoadAliasFile reads and validates an alias file.
func LoadAliasFile(path string) (AliasConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AliasConfig{}, fmt.Errorf("read alias file %s: %w", path, err)
	}
	var cfg AliasConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AliasConfig{}, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	if _, err := cfg.Rules(); err != nil {
		return AliasConfig{}, fmt.Errorf("invalid alias file %s: %w", path, err)
	}
	return cfg, nil
}

// AliasLoader keeps a Classifier's table in sync with an alias file.
type AliasLoader struct {
	path       string
	classifier *Classifier
	logger     *zerolog.Logger

	mu      sync.Mutex
	current AliasConfig
}

// NewAliasLoader loads path and installs the resulting table into c.
func NewAliasLoader(path string, c *Classifier, logger *zerolog.Logger) (*AliasLoader, error) {
	l := &AliasLoader{path: path, classifier: c, logger: logger}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Config returns the aliases currently installed.
func (l *AliasLoader) Config() AliasConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Reload re-reads the file. On error the installed table is left untouched.
func (l *AliasLoader) Reload() error {
	cfg, err := LoadAliasFile(l.path)
	if err != nil {
		return err
	}
	rules, err := WithAliases(cfg)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.current = cfg
	l.classifier.SetRules(rules)
	l.mu.Unlock()
	l.logger.Info().Str("path", l.path).Int("aliases", len(cfg.Aliases)).Msg("Tag aliases loaded")
	return nil
}

// Watch reloads the file whenever it changes. The directory is watched so that
// editors which replace the file on save are picked up. Call stop to end watching.
func (l *AliasLoader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("alias watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("alias watcher add %s: %w", l.path, err)
	}
	target := filepath.Clean(l.path)

	done := make(chan struct{})
	go func() {
		defer w.Close() //nolint:errcheck
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if err := l.Reload(); err != nil {
						l.logger.Warn().Err(err).Msg("Alias reload failed, keeping previous rules")
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn().Err(err).Msg("Alias watcher error")
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}
