package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/docshape/docshape"
	"github.com/docshape/docshape/jsondoc"
	"github.com/docshape/docshape/yamldoc"
)

var validateFlags struct {
	schema   string
	format   string
	depth    int
	maxDepth int
	watch    bool
}

var validateCmd = &cobra.Command{
	Use:   "validate [flags] DOC...",
	Short: "Validate documents against a schema",
	Long: `Validate one or more documents against a schema document.

The schema and the documents are YAML by default; files ending in .json are
decoded as JSON. Exit status is 1 when any document has validation errors.

Examples:
  # Validate a document
  docshape validate --schema schema.yaml config.yaml

  # Machine-readable report, full error trees
  docshape validate --schema schema.yaml --format json config.yaml

  # Only the top line of each error
  docshape validate --schema schema.yaml --depth 1 config.yaml

  # Revalidate whenever the schema or the document changes
  docshape validate --schema schema.yaml --watch config.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.schema, "schema", "s", "", "schema file (required)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	validateCmd.Flags().IntVar(&validateFlags.depth, "depth", 0, "error description depth, 0 for unbounded")
	validateCmd.Flags().IntVar(&validateFlags.maxDepth, "max-depth", docshape.DefaultMaxDepth, "schema recursion cap")
	validateCmd.Flags().BoolVar(&validateFlags.watch, "watch", false, "revalidate when the schema or a document changes")
	_ = validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateFlags.format != "text" && validateFlags.format != "json" {
		return fmt.Errorf("unknown format %q", validateFlags.format)
	}
	if validateFlags.watch {
		return watchValidate(cmd, args)
	}
	failed, err := validateOnce(cmd, args)
	if err != nil {
		return err
	}
	if failed {
		cmd.SilenceErrors = true
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validateOnce loads the schema and runs every document through it. The
// bool result reports whether any document had errors.
func validateOnce(cmd *cobra.Command, docs []string) (bool, error) {
	schemaNode, err := parseFile(validateFlags.schema)
	if err != nil {
		return false, err
	}
	v, err := docshape.New(schemaNode, docshape.WithMaxDepth(validateFlags.maxDepth))
	if err != nil {
		return false, err
	}

	failed := false
	for _, path := range docs {
		doc, err := parseFile(path)
		if err != nil {
			return false, err
		}
		errs := v.Validate(doc)
		if len(errs) > 0 {
			failed = true
		}
		if err := report(cmd, path, errs); err != nil {
			return false, err
		}
	}
	return failed, nil
}

func report(cmd *cobra.Command, path string, errs []docshape.Error) error {
	switch validateFlags.format {
	case "json":
		out, err := j.Marshal(struct {
			Document string           `json:"document"`
			Valid    bool             `json:"valid"`
			Errors   []docshape.Error `json:"errors"`
		}{Document: path, Valid: len(errs) == 0, Errors: errs})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	default:
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d error(s)\n", path, len(errs))
		for i := range errs {
			fmt.Fprintln(cmd.OutOrStdout(), errs[i].Description(validateFlags.depth))
		}
	}
	return nil
}

func parseFile(path string) (docshape.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return jsondoc.Parse(data)
	}
	return yamldoc.Parse(data)
}

// watchValidate revalidates on file changes until interrupted. Events are
// debounced so editors that write in bursts trigger a single run.
func watchValidate(cmd *cobra.Command, docs []string) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{}
	for _, path := range append([]string{validateFlags.schema}, docs...) {
		// Watch the directory: editors replace files, which drops plain
		// file watches.
		dir := filepath.Dir(path)
		if !watched[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
			watched[dir] = true
		}
	}

	run := func() {
		if _, err := validateOnce(cmd, docs); err != nil {
			logger.Error("validation run failed", "error", err)
		}
	}
	run()

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !relevantPath(ev.Name, docs) {
				continue
			}
			logger.Info("change detected", "file", ev.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		case <-pending:
			run()
		}
	}
}

func relevantPath(name string, docs []string) bool {
	if sameFile(name, validateFlags.schema) {
		return true
	}
	for _, d := range docs {
		if sameFile(name, d) {
			return true
		}
	}
	return false
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
