// Package config loads the YAML configuration that describes how a
// rulebook document encodes its sections, classes and lead-in phrasing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/rulebook/pkg/extract"
	"github.com/coolbeans/rulebook/pkg/markup"
)

// ErrInvalidConfig is returned by Validate and Load for unusable configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultSectionXPath selects top-level rulebook sections.
const DefaultSectionXPath = `//section[contains(concat(' ', normalize-space(@class), ' '), ' page-break ')]`

// DefaultOutputDir is where numbered sections are written.
const DefaultOutputDir = "numbered_rules"

// SectionRule maps a substring of a section id to its canonical numeral.
type SectionRule struct {
	Match   string `yaml:"match"`
	Numeral string `yaml:"numeral"`
}

// Classes holds the class names of the source document.
type Classes struct {
	Exclude          string `yaml:"exclude"`
	Intro            string `yaml:"intro"`
	SuppressNumber   string `yaml:"suppress_number"`
	SubsectionHeader string `yaml:"subsection_header"`
	Example          string `yaml:"example"`
	Addendum         string `yaml:"addendum"`
	Supersede        string `yaml:"supersede"`
}

// Config is the effective converter configuration.
type Config struct {
	SectionXPath    string        `yaml:"section_xpath"`
	Sections        []SectionRule `yaml:"sections"`
	Classes         Classes       `yaml:"classes"`
	RulesHrefMarker string        `yaml:"rules_href_marker"`

	// IntroPhrases are extra case-insensitive "contains" phrases that mark
	// the first item of a nested list as a lead-in.
	IntroPhrases []string `yaml:"intro_phrases"`

	OutputDir string `yaml:"output_dir"`
}

// Default returns the configuration of the published rulebook.
func Default() *Config {
	vocab := extract.DefaultVocabulary()
	return &Config{
		SectionXPath: DefaultSectionXPath,
		Sections: []SectionRule{
			{Match: "setupgame", Numeral: "0"},
			{Match: "phases", Numeral: "1"},
			{Match: "factions", Numeral: "2"},
			{Match: "treachery", Numeral: "3"},
			{Match: "variants", Numeral: "4"},
		},
		Classes: Classes{
			Exclude:          vocab.ExcludeClass,
			Intro:            vocab.IntroClass,
			SuppressNumber:   vocab.SuppressNumberClass,
			SubsectionHeader: vocab.SubsectionHeaderClass,
			Example:          vocab.ExampleClass,
			Addendum:         vocab.AddendumClass,
			Supersede:        vocab.SupersedeClass,
		},
		RulesHrefMarker: vocab.RulesHrefMarker,
		IntroPhrases:    []string{},
		OutputDir:       DefaultOutputDir,
	}
}

// Parse overlays YAML data on the defaults and validates the result.
// Keys absent from data keep their default values; a sections list
// replaces the default table.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem found, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.SectionXPath) == "" {
		problems = append(problems, "section_xpath is empty")
	} else if _, err := markup.Compile(c.SectionXPath); err != nil {
		problems = append(problems, fmt.Sprintf("section_xpath: %v", err))
	}

	if len(c.Sections) == 0 {
		problems = append(problems, "sections is empty")
	}
	seen := make(map[string]string)
	for i, rule := range c.Sections {
		if rule.Match == "" {
			problems = append(problems, fmt.Sprintf("sections[%d]: match is empty", i))
		}
		if _, err := strconv.ParseUint(rule.Numeral, 10, 32); err != nil {
			problems = append(problems, fmt.Sprintf("sections[%d]: numeral %q is not a number", i, rule.Numeral))
			continue
		}
		if prev, ok := seen[rule.Numeral]; ok {
			problems = append(problems, fmt.Sprintf("sections[%d]: numeral %s already used by %q", i, rule.Numeral, prev))
			continue
		}
		seen[rule.Numeral] = rule.Match
	}

	classes := []struct{ key, value string }{
		{"exclude", c.Classes.Exclude},
		{"intro", c.Classes.Intro},
		{"suppress_number", c.Classes.SuppressNumber},
		{"subsection_header", c.Classes.SubsectionHeader},
		{"example", c.Classes.Example},
		{"addendum", c.Classes.Addendum},
		{"supersede", c.Classes.Supersede},
	}
	for _, class := range classes {
		if strings.TrimSpace(class.value) == "" {
			problems = append(problems, fmt.Sprintf("classes.%s is empty", class.key))
		} else if strings.ContainsAny(class.value, " \t\n") {
			problems = append(problems, fmt.Sprintf("classes.%s %q contains whitespace", class.key, class.value))
		}
	}

	if c.RulesHrefMarker == "" {
		problems = append(problems, "rules_href_marker is empty")
	}
	for i, phrase := range c.IntroPhrases {
		if strings.TrimSpace(phrase) == "" {
			problems = append(problems, fmt.Sprintf("intro_phrases[%d] is empty", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ToYAML serializes the effective configuration.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Vocabulary returns the class vocabulary for the extractor.
func (c *Config) Vocabulary() extract.Vocabulary {
	return extract.Vocabulary{
		ExcludeClass:          c.Classes.Exclude,
		IntroClass:            c.Classes.Intro,
		SuppressNumberClass:   c.Classes.SuppressNumber,
		SubsectionHeaderClass: c.Classes.SubsectionHeader,
		ExampleClass:          c.Classes.Example,
		AddendumClass:         c.Classes.Addendum,
		SupersedeClass:        c.Classes.Supersede,
		RulesHrefMarker:       c.RulesHrefMarker,
	}
}

// Phrases returns the built-in intro phrases followed by the configured ones.
func (c *Config) Phrases() []extract.IntroPhrase {
	phrases := extract.DefaultIntroPhrases()
	for _, phrase := range c.IntroPhrases {
		phrases = append(phrases, extract.ContainsPhrase(strings.TrimSpace(phrase)))
	}
	return phrases
}

// NewExtractor builds an extractor from the configuration.
func (c *Config) NewExtractor() *extract.Extractor {
	return extract.NewExtractorWithVocabulary(c.Vocabulary(), c.Phrases())
}
