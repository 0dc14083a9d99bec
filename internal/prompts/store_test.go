package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderSubstitution(t *testing.T) {
	t.Parallel()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	system, user := store.Render(TemplateTrivia, map[string]string{
		"personality": "Crash",
		"tone":        "upbeat",
		"now_playing": "Nothing",
		"request":     "quiz me on the 80s",
	})

	if !strings.Contains(system, "Crash") {
		t.Errorf("system prompt missing personality: %q", system)
	}
	if strings.Contains(system, "{personality}") || strings.Contains(system, "{tone}") {
		t.Errorf("system prompt has unreplaced placeholders: %q", system)
	}
	if user != "quiz me on the 80s" {
		t.Errorf("user prompt = %q, want request text", user)
	}
}

func TestRenderUnknownTemplateFallsBack(t *testing.T) {
	t.Parallel()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	system, user := store.Render("no_such_template", map[string]string{
		"request": "hello there",
	})
	if system == "" {
		t.Error("fallback system prompt is empty")
	}
	if user != "hello there" {
		t.Errorf("fallback user prompt = %q, want request text", user)
	}
}

func TestNewStoreLoadsOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "system: custom system for {name}\nuser: custom user\n"
	if err := os.WriteFile(filepath.Join(dir, "trivia.yaml"), []byte(override), 0o600); err != nil {
		t.Fatalf("failed to write override: %v", err)
	}

	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	system, user := store.Render(TemplateTrivia, map[string]string{"name": "dj"})
	if system != "custom system for dj" {
		t.Errorf("system = %q, want override applied", system)
	}
	if user != "custom user" {
		t.Errorf("user = %q, want override applied", user)
	}

	// Templates without overrides keep their defaults.
	if !store.Has(TemplateModeration) {
		t.Error("default moderation template lost after loading overrides")
	}
}

func TestNewStoreMissingDirectory(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err != nil {
		t.Fatalf("NewStore with missing dir should not fail: %v", err)
	}
	if !store.Has(TemplateDJChat) {
		t.Error("defaults missing when directory does not exist")
	}
}

func TestNewStoreRejectsBadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("system: [unclosed"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewStore(dir, nil); err == nil {
		t.Error("expected error for unparseable template file")
	}
}
