package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
	if len(cfg.Sections) != 5 {
		t.Errorf("Expected 5 default sections, got %d", len(cfg.Sections))
	}
	if cfg.Sections[1].Match != "phases" || cfg.Sections[1].Numeral != "1" {
		t.Errorf("Unexpected second section rule %+v", cfg.Sections[1])
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("Expected output dir %q, got %q", DefaultOutputDir, cfg.OutputDir)
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
classes:
  exclude: expansion_only
intro_phrases:
  - "In summary"
output_dir: out
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Classes.Exclude != "expansion_only" {
		t.Errorf("Expected overridden exclude class, got %q", cfg.Classes.Exclude)
	}
	if cfg.Classes.Intro != "intro" {
		t.Errorf("Expected default intro class to survive, got %q", cfg.Classes.Intro)
	}
	if len(cfg.Sections) != 5 {
		t.Errorf("Expected default section table, got %d rules", len(cfg.Sections))
	}
	if cfg.OutputDir != "out" {
		t.Errorf("Expected output dir 'out', got %q", cfg.OutputDir)
	}

	vocab := cfg.Vocabulary()
	if vocab.ExcludeClass != "expansion_only" || vocab.RulesHrefMarker != "rules#" {
		t.Errorf("Unexpected vocabulary %+v", vocab)
	}

	phrases := cfg.Phrases()
	last := phrases[len(phrases)-1]
	if last.Name != "contains:in summary" {
		t.Errorf("Expected configured phrase last, got %q", last.Name)
	}
}

func TestParse_SectionsReplaceTable(t *testing.T) {
	cfg, err := Parse([]byte(`
sections:
  - match: basic
    numeral: "0"
  - match: advanced
    numeral: "1"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.Sections) != 2 || cfg.Sections[1].Match != "advanced" {
		t.Errorf("Expected the configured table to replace the defaults, got %+v", cfg.Sections)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty class", func(c *Config) { c.Classes.Intro = "" }, "classes.intro is empty"},
		{"class with space", func(c *Config) { c.Classes.Exclude = "not classic" }, "contains whitespace"},
		{"duplicate numeral", func(c *Config) { c.Sections[1].Numeral = "0" }, "already used"},
		{"non-numeric numeral", func(c *Config) { c.Sections[0].Numeral = "I" }, "not a number"},
		{"empty match", func(c *Config) { c.Sections[2].Match = "" }, "match is empty"},
		{"no sections", func(c *Config) { c.Sections = nil }, "sections is empty"},
		{"bad xpath", func(c *Config) { c.SectionXPath = "//section[" }, "section_xpath"},
		{"empty marker", func(c *Config) { c.RulesHrefMarker = "" }, "rules_href_marker"},
		{"blank phrase", func(c *Config) { c.IntroPhrases = []string{" "} }, "intro_phrases[0]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}
	if cfg.SectionXPath != DefaultSectionXPath {
		t.Errorf("Expected default xpath, got %q", cfg.SectionXPath)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "rulebook.yaml")
	if err := os.WriteFile(path, []byte("classes:\n  intro: \"\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for an empty class, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}

	if err := os.WriteFile(path, []byte("sections: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected a YAML parse error, got %v", err)
	}
}

func TestToYAML_Roundtrip(t *testing.T) {
	cfg := Default()
	cfg.IntroPhrases = []string{"at the end of"}

	data, err := cfg.ToYAML()
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}
	for _, key := range []string{"section_xpath:", "suppress_number: supress_number", "output_dir: numbered_rules"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %q in YAML output:\n%s", key, data)
		}
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse of ToYAML output failed: %v", err)
	}
	if parsed.Vocabulary() != cfg.Vocabulary() {
		t.Errorf("Vocabulary changed across round trip: %+v vs %+v", parsed.Vocabulary(), cfg.Vocabulary())
	}
	if len(parsed.IntroPhrases) != 1 || parsed.IntroPhrases[0] != "at the end of" {
		t.Errorf("Intro phrases changed across round trip: %v", parsed.IntroPhrases)
	}
}

func TestNewExtractor_UsesVocabulary(t *testing.T) {
	cfg := Default()
	cfg.Classes.Exclude = "expansion_only"

	if got := cfg.NewExtractor().Vocabulary().ExcludeClass; got != "expansion_only" {
		t.Errorf("Expected extractor to use configured exclude class, got %q", got)
	}
}
