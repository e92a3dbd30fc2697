package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/tmp/project")

	if len(loader.dirs) != 2 {
		t.Errorf("expected 2 search dirs, got %d", len(loader.dirs))
	}
	if loader.cache == nil {
		t.Error("cache should be initialized")
	}
	if loader.funcMap == nil {
		t.Error("funcMap should be initialized")
	}
}

func TestLoader_LoadEmbedded(t *testing.T) {
	loader := NewLoader("/nonexistent")

	content, err := loader.Load("normalize-idea")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if content == "" {
		t.Error("expected non-empty content")
	}
	if !strings.Contains(content, "product idea") {
		t.Error("content should contain 'product idea'")
	}
}

func TestLoader_LoadFromDir(t *testing.T) {
	dir := t.TempDir()
	promptsDir := filepath.Join(dir, ".prdflow", "prompts")
	os.MkdirAll(promptsDir, 0755)
	os.WriteFile(filepath.Join(promptsDir, "custom.txt"), []byte("Custom prompt content"), 0644)

	loader := NewLoader(dir)

	content, err := loader.Load("custom")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if content != "Custom prompt content" {
		t.Errorf("content = %q, want 'Custom prompt content'", content)
	}
}

func TestLoader_DirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	promptsDir := filepath.Join(dir, "prompts")
	os.MkdirAll(promptsDir, 0755)
	os.WriteFile(filepath.Join(promptsDir, "normalize-idea.txt"), []byte("Override"), 0644)

	loader := NewLoader(dir)

	content, err := loader.Load("normalize-idea")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if content != "Override" {
		t.Errorf("content = %q, want dir override to win over embedded", content)
	}
}

func TestLoader_LoadWithVars(t *testing.T) {
	loader := NewLoader("/nonexistent")

	content, err := loader.LoadWithVars("classify-intent", map[string]any{
		"ActiveTitle": "Problem Statement",
		"SectionKeys": []string{"problem_statement", "goals"},
	})
	if err != nil {
		t.Fatalf("LoadWithVars: %v", err)
	}

	if !strings.Contains(content, `"Problem Statement"`) {
		t.Error("active title not substituted")
	}
	if !strings.Contains(content, "problem_statement, goals") {
		t.Error("join func did not render section keys")
	}
}

func TestLoader_MissingPrompt(t *testing.T) {
	loader := NewLoader(t.TempDir())

	if _, err := loader.Load("no-such-prompt"); err == nil {
		t.Fatal("Load succeeded on a missing prompt")
	}
	if loader.Exists("no-such-prompt") {
		t.Error("Exists reported a missing prompt")
	}
}

func TestLoader_List(t *testing.T) {
	loader := NewLoader(t.TempDir())

	names, err := loader.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	have := make(map[string]bool, len(names))
	for _, name := range names {
		have[name] = true
	}
	for _, want := range []string{
		"normalize-idea", "classify-intent", "section-questions",
		"update-section", "substantive-check", "summarize-conversation",
		"refine-document",
	} {
		if !have[want] {
			t.Errorf("List missing embedded prompt %q", want)
		}
	}
}

func TestTemplateFuncs(t *testing.T) {
	dir := t.TempDir()
	promptsDir := filepath.Join(dir, "prompts")
	os.MkdirAll(promptsDir, 0755)
	os.WriteFile(filepath.Join(promptsDir, "funcs.txt"),
		[]byte(`{{upper .a}} {{default "fallback" .b}} {{indent 2 .c}}`), 0644)

	loader := NewLoader(dir)

	content, err := loader.LoadWithVars("funcs", map[string]any{
		"a": "go",
		"b": "",
		"c": "x\ny",
	})
	if err != nil {
		t.Fatalf("LoadWithVars: %v", err)
	}
	if content != "GO fallback   x\n  y" {
		t.Errorf("rendered = %q", content)
	}
}

func TestBuilder(t *testing.T) {
	prompt := NewBuilder().
		Add("Intro.").
		AddSection("Context", "Some context.").
		AddList("Checklist", []string{"one", "two"}).
		Build()

	if !strings.Contains(prompt, "## Context\n\nSome context.") {
		t.Error("missing section")
	}
	if !strings.Contains(prompt, "- one\n- two\n") {
		t.Error("missing list items")
	}
	if !strings.HasPrefix(prompt, "Intro.") {
		t.Error("parts out of order")
	}
}
