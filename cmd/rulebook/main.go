package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coolbeans/rulebook/pkg/config"
	"github.com/coolbeans/rulebook/pkg/convert"
	"github.com/coolbeans/rulebook/pkg/extract"
	"github.com/coolbeans/rulebook/pkg/jsonfix"
	"github.com/coolbeans/rulebook/pkg/logging"
	"github.com/coolbeans/rulebook/pkg/markup"
	"github.com/coolbeans/rulebook/pkg/watch"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rulebook",
		Short: "Rulebook HTML to numbered rules converter",
		Long: `Rulebook converts a published rulebook HTML document into numbered,
plain-text rule files, one per top-level section.

Every rule receives a stable dotted number such as 3.01.11.01 derived from
its position in the nested rule lists. Editorial lead-ins receive the 00
sentinel and cross-reference links are appended as +N.NN / -N.NN markers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelStr, _ := cmd.Flags().GetString("log-level")
			formatStr, _ := cmd.Flags().GetString("log-format")

			level, err := logging.ParseLevel(levelStr)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			logging.InitLogger(level, format, os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(sectionsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(fixJSONCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConverter reads --config and builds a converter from it.
func loadConverter(cmd *cobra.Command) (*config.Config, *convert.Converter, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	converter, err := convert.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, converter, nil
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a rulebook HTML document into numbered rule files",
		Long: `Convert a rulebook HTML document into numbered rule files.

One <numeral>.md file is written per recognised section, together with a
manifest.json recording BLAKE3 digests. Files whose content did not change
since the previous run are left untouched.

Example:
  rulebook convert --source rules.html
  rulebook convert --source rules.html --output numbered_rules --stats
  rulebook convert --source rules.html --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			showStats, _ := cmd.Flags().GetBool("stats")

			if source == "" {
				return fmt.Errorf("--source flag is required")
			}
			if _, err := os.Stat(source); os.IsNotExist(err) {
				return fmt.Errorf("source file not found: %s", source)
			}

			cfg, converter, err := loadConverter(cmd)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.OutputDir
			}

			fmt.Printf("Reading HTML file: %s\n", source)
			startTime := time.Now()

			result, err := converter.ConvertFile(cmd.Context(), source)
			if err != nil {
				return err
			}

			printConversion(result, showStats)

			if dryRun {
				fmt.Printf("\nDry run: nothing written to %s\n", output)
				return nil
			}

			report, err := converter.WriteOutputs(output, result)
			if err != nil {
				return err
			}
			printWriteReport(report)

			fmt.Printf("\nConversion complete in %v (run %s)\n", time.Since(startTime).Round(time.Millisecond), result.RunID)
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source HTML document")
	cmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringP("config", "c", "", "YAML configuration file")
	cmd.Flags().Bool("dry-run", false, "Convert without writing any files")
	cmd.Flags().Bool("stats", false, "Show per-section statistics")

	return cmd
}

func printConversion(result *convert.Result, showStats bool) {
	for _, skipped := range result.Skipped {
		fmt.Printf("Skipping section with id: %q (%v)\n", skipped.ID, skipped.Err)
	}
	for _, section := range result.Sections {
		fmt.Printf("Processing section %s (%s)...\n", section.Numeral, section.ID)
		fmt.Printf("  %d lines\n", section.LineCount())
		if showStats {
			stats := section.Result.Stats()
			fmt.Printf("  Rules: %d (%d numbered, %d intro)\n", stats.Rules, stats.NumberedRules, stats.IntroLines)
			fmt.Printf("  Subsections: %d\n", stats.Subsections)
			fmt.Printf("  Cross-references: %d\n", stats.CrossRefs)
			fmt.Printf("  Max depth: %d\n", stats.MaxDepth)
		}
	}
}

func printWriteReport(report *convert.WriteReport) {
	for _, path := range report.Written {
		fmt.Printf("  Written %s\n", path)
	}
	for _, path := range report.Unchanged {
		fmt.Printf("  Unchanged %s\n", path)
	}
	fmt.Printf("  Manifest %s\n", report.ManifestPath)
}

func sectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List the sections of a rulebook document",
		Long: `List the top-level sections found in a rulebook document, with the
numeral each one resolves to or the reason it would be skipped.

Example:
  rulebook sections --source rules.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			cfg, converter, err := loadConverter(cmd)
			if err != nil {
				return err
			}

			file, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", source, err)
			}
			defer file.Close()

			doc, err := markup.Parse(file)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", source, err)
			}

			found := converter.Discover(doc)
			fmt.Printf("Sections matching %s: %d\n\n", cfg.SectionXPath, len(found))
			fmt.Printf("%-6s %-8s %-30s %s\n", "INDEX", "NUMERAL", "ID", "STATUS")
			for _, section := range found {
				status := "ok"
				numeral := section.Numeral
				if section.Err != nil {
					status = "skipped: " + section.Err.Error()
					numeral = "-"
				}
				fmt.Printf("%-6d %-8s %-30s %s\n", section.Index, numeral, section.ID, status)
			}
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source HTML document")
	cmd.Flags().StringP("config", "c", "", "YAML configuration file")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconvert a rulebook document whenever it changes",
		Long: `Watch a rulebook HTML document and reconvert it after every settled change.

The document is converted once at startup. Press Ctrl+C to stop.

Example:
  rulebook watch --source rules.html --output numbered_rules --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			cfg, converter, err := loadConverter(cmd)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.OutputDir
			}

			run := func(ctx context.Context, path string) error {
				runCtx := logging.WithRunID(ctx, logging.NewRunID())
				result, err := converter.ConvertFile(runCtx, path)
				if err != nil {
					return err
				}
				report, err := converter.WriteOutputs(output, result)
				if err != nil {
					return err
				}
				fmt.Printf("[%s] %d sections, %d written, %d unchanged, %d skipped\n",
					time.Now().Format("15:04:05"), len(result.Sections), len(report.Written),
					len(report.Unchanged), len(result.Skipped))
				return nil
			}

			watcher, err := watch.NewFileWatcher(source, debounce, run)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, watcher.Path()); err != nil {
				fmt.Fprintf(os.Stderr, "initial conversion failed: %v\n", err)
			}

			fmt.Printf("Watching %s (output %s). Press Ctrl+C to stop.\n", watcher.Path(), output)
			if err := watcher.Run(ctx); err != nil {
				return err
			}

			status := watcher.Status()
			fmt.Printf("\nStopped after %d runs (%d failed)\n", status.Runs, status.Failures)
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source HTML document")
	cmd.Flags().StringP("output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringP("config", "c", "", "YAML configuration file")
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before reconverting")

	return cmd
}

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two numbered rule files",
		Long: `Compare two numbered rule files (or two output directories) and report
added, removed and modified rule numbers grouped by section.

Example:
  rulebook diff --base old/3.md --target numbered_rules/3.md
  rulebook diff --base old --target numbered_rules --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath, _ := cmd.Flags().GetString("base")
			targetPath, _ := cmd.Flags().GetString("target")
			formatStr, _ := cmd.Flags().GetString("format")

			if basePath == "" || targetPath == "" {
				return fmt.Errorf("--base and --target flags are required")
			}
			if formatStr != "text" && formatStr != "json" {
				return fmt.Errorf("unsupported format: %s (use text or json)", formatStr)
			}

			base, err := loadNumbered(basePath)
			if err != nil {
				return err
			}
			target, err := loadNumbered(targetPath)
			if err != nil {
				return err
			}

			report := extract.NewRulesDiffer(base, target).Compare(basePath, targetPath)

			if formatStr == "json" {
				data, err := report.ToJSON()
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Print(report.String())
			return nil
		},
	}

	cmd.Flags().String("base", "", "Base numbered file or directory")
	cmd.Flags().String("target", "", "Target numbered file or directory")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

// loadNumbered parses a numbered file, or every *.md file of a directory
// merged into one document.
func loadNumbered(path string) (*extract.NumberedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.md"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}
	}

	merged := &extract.NumberedDocument{}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		doc, err := extract.ParseNumbered(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if merged.Title == "" {
			merged.Title = doc.Title
		}
		merged.Subsections = append(merged.Subsections, doc.Subsections...)
		merged.Entries = append(merged.Entries, doc.Entries...)
	}
	return merged, nil
}

func fixJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-json",
		Short: "Repair a hand-edited JSON index file",
		Long: `Repair a hand-edited JSON file: remove doubled commas, trailing commas
and stray empty object pairs, then re-indent it with two spaces.

Example:
  rulebook fix-json --file rule-exclusions.json
  rulebook fix-json --file rule-exclusions.json --output fixed.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			output, _ := cmd.Flags().GetString("output")

			if file == "" {
				return fmt.Errorf("--file flag is required")
			}

			result, err := jsonfix.RepairFile(file, output)
			if err != nil {
				return err
			}

			target := output
			if target == "" {
				target = file
			}
			fmt.Printf("Fixed JSON successfully: %s\n", target)
			fmt.Printf("  Doubled commas:  %d\n", result.Fixes.DoubledCommas)
			fmt.Printf("  Trailing commas: %d\n", result.Fixes.TrailingCommas)
			fmt.Printf("  Empty pairs:     %d\n", result.Fixes.EmptyPairs)
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON file to repair")
	cmd.Flags().StringP("output", "o", "", "Write the repaired JSON here instead of in place")

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as YAML: the built-in defaults
overlaid with --config when given. The output is a valid config file.

Example:
  rulebook config > rulebook.yaml
  rulebook config --config rulebook.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			data, err := cfg.ToYAML()
			if err != nil {
				return fmt.Errorf("failed to serialize config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "YAML configuration file")

	return cmd
}
