// Package prompts loads and renders the prompt templates used for
// language model calls. Templates live in YAML files (one per
// template, "system" and "user" keys) and may be overridden by
// dropping files into the configured directory; built-in defaults
// cover every template the engine uses.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Template holds the two halves of a chat prompt. Both parts may
// contain {name} placeholders filled in by Render.
type Template struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Store holds the loaded templates.
type Store struct {
	templates map[string]Template
	logger    *zap.Logger
}

// NewStore returns a store seeded with the built-in defaults. If dir
// is non-empty, *.yaml files in it override the defaults by basename.
// A missing directory is not an error; an unparseable file is.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		templates: make(map[string]Template, len(defaultTemplates)),
		logger:    logger,
	}
	for name, tpl := range defaultTemplates {
		s.templates[name] = tpl
	}

	if dir == "" {
		return s, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read prompt directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}

		var tpl Template
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ext)
		s.templates[name] = tpl
		if logger != nil {
			logger.Info("loaded_prompt_template", zap.String("template", name))
		}
	}

	return s, nil
}

// Render returns the template's system and user strings with every
// {key} placeholder replaced by vars[key]. An unknown template name
// falls back to a generic DJ prompt rather than failing the request.
func (s *Store) Render(name string, vars map[string]string) (system, user string) {
	tpl, ok := s.templates[name]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("unknown_prompt_template", zap.String("template", name))
		}
		tpl = fallbackTemplate
	}
	return substitute(tpl.System, vars), substitute(tpl.User, vars)
}

// Has reports whether a template with the given name is loaded.
func (s *Store) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

func substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
