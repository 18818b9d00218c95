// Package convert drives a whole rulebook document through the extractor:
// it discovers the top-level sections, resolves their numerals, numbers
// each one and writes the results with a digest manifest.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coolbeans/rulebook/pkg/config"
	"github.com/coolbeans/rulebook/pkg/extract"
	"github.com/coolbeans/rulebook/pkg/logging"
	"github.com/coolbeans/rulebook/pkg/markup"
)

// Converter numbers every recognised section of a rulebook document.
type Converter struct {
	extractor *extract.Extractor
	sections  *SectionMap
	query     *markup.Query
}

// New creates a Converter from a validated configuration.
func New(cfg *config.Config) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	query, err := markup.Compile(cfg.SectionXPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile section query: %w", err)
	}
	return &Converter{
		extractor: cfg.NewExtractor(),
		sections:  NewSectionMap(cfg.Sections),
		query:     query,
	}, nil
}

// DiscoveredSection is a section element found in the document.
type DiscoveredSection struct {
	// Index is the position among the matched sections, from 0.
	Index int `json:"index"`

	// ID is the section's id attribute.
	ID string `json:"id"`

	// Numeral is the resolved canonical numeral, or "" when Err is set.
	Numeral string `json:"numeral,omitempty"`

	Err  error        `json:"-"`
	Node *markup.Node `json:"-"`
}

// Discover lists the sections of doc and their resolved numerals.
func (c *Converter) Discover(doc *markup.Node) []DiscoveredSection {
	nodes := c.query.All(doc)
	found := make([]DiscoveredSection, 0, len(nodes))
	for i, node := range nodes {
		numeral, err := c.sections.Resolve(node)
		found = append(found, DiscoveredSection{
			Index:   i,
			ID:      node.AttrOr("id", ""),
			Numeral: numeral,
			Err:     err,
			Node:    node,
		})
	}
	return found
}

// SectionOutput is one numbered section.
type SectionOutput struct {
	ID       string                 `json:"id"`
	Numeral  string                 `json:"numeral"`
	Result   *extract.SectionResult `json:"result"`
	Markdown string                 `json:"-"`
}

// FileName returns the output file name for the section.
func (s *SectionOutput) FileName() string {
	return s.Numeral + ".md"
}

// LineCount returns the number of rendered lines.
func (s *SectionOutput) LineCount() int {
	return strings.Count(s.Markdown, "\n")
}

// SkippedSection is a section that was not converted.
type SkippedSection struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Err   error  `json:"-"`
}

// Result is the outcome of one conversion run.
type Result struct {
	RunID       string           `json:"run_id"`
	Source      string           `json:"source,omitempty"`
	ConvertedAt time.Time        `json:"converted_at"`
	Sections    []*SectionOutput `json:"sections"`
	Skipped     []SkippedSection `json:"skipped,omitempty"`
}

// Section returns the output for numeral, or nil.
func (r *Result) Section(numeral string) *SectionOutput {
	if i := r.indexOf(numeral); i >= 0 {
		return r.Sections[i]
	}
	return nil
}

// ConvertFile reads and converts the HTML document at path.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	result, err := c.Convert(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	result.Source = path
	return result, nil
}

// Convert parses an HTML document and numbers its sections. Unmappable
// sections are logged and listed in Result.Skipped; they do not fail the run.
// When two sections resolve to the same numeral the later one replaces the
// earlier.
func (c *Converter) Convert(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := markup.Parse(r)
	if err != nil {
		return nil, err
	}
	return c.ConvertDocument(ctx, doc), nil
}

// ConvertDocument numbers the sections of an already parsed document.
func (c *Converter) ConvertDocument(ctx context.Context, doc *markup.Node) *Result {
	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}

	result := &Result{
		RunID:       runID,
		ConvertedAt: time.Now(),
		Sections:    []*SectionOutput{},
	}

	for _, found := range c.Discover(doc) {
		if found.Err != nil {
			logging.SectionSkipped(ctx, found.ID, found.Err, "index", found.Index)
			result.Skipped = append(result.Skipped, SkippedSection{Index: found.Index, ID: found.ID, Err: found.Err})
			continue
		}

		section := c.extractor.ProcessSection(found.Node, found.Numeral)
		output := &SectionOutput{
			ID:       found.ID,
			Numeral:  found.Numeral,
			Result:   section,
			Markdown: section.Markdown(),
		}
		logging.SectionConverted(ctx, found.ID, found.Numeral, output.LineCount())

		if existing := result.indexOf(found.Numeral); existing >= 0 {
			logging.LoggerFromContext(ctx).Warn("duplicate_numeral",
				"numeral", found.Numeral,
				"replaced", result.Sections[existing].ID,
				"section", found.ID)
			result.Sections[existing] = output
			continue
		}
		result.Sections = append(result.Sections, output)
	}

	return result
}

func (r *Result) indexOf(numeral string) int {
	for i, section := range r.Sections {
		if section.Numeral == numeral {
			return i
		}
	}
	return -1
}

// WriteReport lists what WriteOutputs did.
type WriteReport struct {
	Dir          string   `json:"dir"`
	Written      []string `json:"written"`
	Unchanged    []string `json:"unchanged"`
	ManifestPath string   `json:"manifest_path"`
}

// WriteOutputs writes <numeral>.md for every section of result into dir and
// records them in dir/manifest.json. A file whose digest matches both the
// previous manifest and the file on disk is left untouched.
func (c *Converter) WriteOutputs(dir string, result *Result) (*WriteReport, error) {
	ctx := logging.WithRunID(context.Background(), result.RunID)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifestPath := filepath.Join(dir, ManifestFile)
	previous, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	manifest := NewOutputManifest()
	manifest.RunID = result.RunID
	manifest.Source = result.Source

	report := &WriteReport{Dir: dir, ManifestPath: manifestPath}
	for _, section := range result.Sections {
		data := []byte(section.Markdown)
		digest := Digest(data)
		name := section.FileName()
		path := filepath.Join(dir, name)

		manifest.Record(&OutputRecord{
			File:      name,
			Numeral:   section.Numeral,
			SectionID: section.ID,
			BLAKE3:    digest,
			Lines:     section.LineCount(),
		})

		if previous.Unchanged(name, digest) && fileDigest(path) == digest {
			report.Unchanged = append(report.Unchanged, path)
			logging.FileWritten(ctx, path, false)
			continue
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		report.Written = append(report.Written, path)
		logging.FileWritten(ctx, path, true, "lines", section.LineCount())
	}

	if err := manifest.SaveManifest(manifestPath); err != nil {
		return nil, err
	}
	return report, nil
}

// fileDigest returns the digest of the file at path, or "" if it cannot be read.
func fileDigest(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return Digest(data)
}
