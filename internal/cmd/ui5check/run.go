package ui5check

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/ui5ls/internal/ci"
	"github.com/albertocavalcante/ui5ls/internal/cli"
	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/quickfix"
	"github.com/albertocavalcante/ui5ls/internal/ui5/loader"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5config"
	"github.com/albertocavalcante/ui5ls/internal/validation"
	"github.com/albertocavalcante/ui5ls/internal/version"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Run executes ui5check with the given arguments.
// Returns exit code.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

type options struct {
	json     bool
	fix      bool
	diff     bool
	quiet    bool
	color    bool
	flex     bool
	prefix   string
	model    *model.Model
	service  *odata.Metadata
	maxProcs int
}

// RunWithIO allows custom IO for embedding/testing.
func RunWithIO(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	var (
		jsonFlag     bool
		fixFlag      bool
		diffFlag     bool
		quietFlag    bool
		versionFlag  bool
		flexFlag     bool
		noColorFlag  bool
		configFlag   string
		metadataFlag string
		serviceFlag  string
		ciFlag       string
	)

	fs := flag.NewFlagSet("ui5check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&jsonFlag, "json", false, "output diagnostics as JSON")
	fs.BoolVar(&fixFlag, "fix", false, "add stable ids to controls that have none and write the files")
	fs.BoolVar(&diffFlag, "diff", false, "print the stable id fixes as a unified diff instead of writing them")
	fs.BoolVar(&quietFlag, "quiet", false, "only output errors, suppress warnings")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&flexFlag, "flex", false, "require stable ids (overrides project.flex_enabled)")
	fs.BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	fs.StringVar(&configFlag, "config", "", "path to ui5ls.toml or ui5ls.yaml (default: discovered)")
	fs.StringVar(&metadataFlag, "metadata", "", "comma-separated api.json files or directories (overrides framework.metadata)")
	fs.StringVar(&serviceFlag, "service", "", "OData $metadata file for annotation paths (overrides service.metadata)")
	fs.StringVar(&ciFlag, "ci", "", "also report for a CI system (auto, github, gitlab, circleci, azure, jenkins, generic)")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: ui5check [flags] <files or directories...>")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Validates SAPUI5 XML views and fragments against the framework metadata.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Examples:")
		cli.Writeln(stderr, "  ui5check webapp                      # Check all views and fragments")
		cli.Writeln(stderr, "  ui5check -json webapp/view           # Output as JSON")
		cli.Writeln(stderr, "  ui5check -flex -diff webapp          # Preview stable id fixes")
		cli.Writeln(stderr, "  ui5check -flex -fix webapp           # Apply stable id fixes")
		cli.Writeln(stderr, "  ui5check -ci auto webapp             # Annotate pull requests in CI")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "ui5check %s\n", version.String())
		return cli.ExitOK
	}

	var ciSystem ci.System
	if ciFlag != "" {
		if jsonFlag {
			cli.Writeln(stderr, "ui5check: -ci cannot be combined with -json")
			return cli.ExitError
		}
		system, err := ci.ParseSystem(ciFlag)
		if err != nil {
			cli.Writef(stderr, "ui5check: %v\n", err)
			return cli.ExitError
		}
		ciSystem = system
	}

	paths := fs.Args()
	if len(paths) == 0 {
		cli.Writeln(stderr, "ui5check: no files specified")
		fs.Usage()
		return cli.ExitError
	}

	cfg, err := loadConfig(configFlag)
	if err != nil {
		cli.Writef(stderr, "ui5check: %v\n", err)
		return cli.ExitError
	}
	if metadataFlag != "" {
		cfg.Framework.Metadata = strings.Split(metadataFlag, ",")
	}
	if serviceFlag != "" {
		cfg.Service.Metadata = serviceFlag
	}
	if len(cfg.Framework.Metadata) == 0 {
		cli.Writeln(stderr, "ui5check: no framework metadata configured (set framework.metadata or use -metadata)")
		return cli.ExitError
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Framework.LoadTimeout.Duration)
	m, err := loader.Load(loadCtx, cfg.Framework.Name, cfg.Framework.Version, cfg.Framework.Metadata...)
	cancel()
	if err != nil {
		cli.Writef(stderr, "ui5check: %v\n", err)
		return cli.ExitError
	}

	opts := options{
		json:     jsonFlag,
		fix:      fixFlag,
		diff:     diffFlag,
		quiet:    quietFlag,
		color:    !noColorFlag && !jsonFlag && isTerminal(stdout),
		flex:     flexFlag || cfg.Project.FlexEnabled,
		prefix:   cfg.Project.IDPrefix,
		model:    m,
		maxProcs: runtime.GOMAXPROCS(0),
	}
	if path := cfg.Service.Metadata; path != "" {
		md, err := odata.LoadEDMXFile(path)
		if err != nil {
			cli.Writef(stderr, "ui5check: loading service metadata: %v\n", err)
			return cli.ExitError
		}
		opts.service = md
	}

	var files []string
	for _, p := range paths {
		expanded, err := expandPath(p, cfg.Matches)
		if err != nil {
			cli.Writef(stderr, "ui5check: %v\n", err)
			return cli.ExitError
		}
		files = append(files, expanded...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	if len(files) == 0 {
		cli.Writeln(stderr, "ui5check: no files to check")
		return cli.ExitOK
	}

	result, err := check(ctx, files, opts)
	if err != nil {
		cli.Writef(stderr, "ui5check: %v\n", err)
		return cli.ExitError
	}

	if opts.fix || opts.diff {
		if err := applyFixes(result, opts, stdout); err != nil {
			cli.Writef(stderr, "ui5check: %v\n", err)
			return cli.ExitError
		}
	}

	if opts.quiet {
		for _, f := range result.Files {
			f.Diagnostics = slices.DeleteFunc(f.Diagnostics, func(d validation.Diagnostic) bool {
				return !d.IsError()
			})
		}
	}

	if opts.json {
		return outputJSON(stdout, result)
	}
	code := outputText(stdout, result, opts.color)

	if ciSystem != "" {
		handler := ci.NewHandler(ci.Config{
			System:      ciSystem,
			Annotations: true,
			Summary:     true,
			Quiet:       opts.quiet,
		})
		if err := handler.Handle(ciReport(result), stdout, stderr); err != nil {
			cli.Writef(stderr, "ui5check: %v\n", err)
			return cli.ExitError
		}
	}
	return code
}

// loadConfig reads the file given with -config or discovers one from the
// working directory.
func loadConfig(path string) (*ui5config.Config, error) {
	if path != "" {
		cfg, err := ui5config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	cfg, _, err := ui5config.DiscoverConfig("")
	return cfg, err
}

// File is a checked view or fragment.
type File struct {
	Path        string
	Text        string
	Doc         *xmldoc.Document
	Diagnostics []validation.Diagnostic
}

// Result collects the checked files in path order.
type Result struct {
	Files []*File
}

// ErrorCount returns the number of error diagnostics.
func (r *Result) ErrorCount() int {
	n := 0
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			if d.IsError() {
				n++
			}
		}
	}
	return n
}

// WarningCount returns the number of non-error diagnostics.
func (r *Result) WarningCount() int {
	n := 0
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			if !d.IsError() {
				n++
			}
		}
	}
	return n
}

// check parses and validates files concurrently.
func check(ctx context.Context, files []string, opts options) (*Result, error) {
	result := &Result{Files: make([]*File, len(files))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.maxProcs, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			f := &File{Path: path, Text: string(src)}
			f.Doc = xmldoc.Parse(f.Text)
			f.Diagnostics = validation.Validate(f.Doc, opts.model, validation.Options{
				FlexEnabled: opts.flex,
				Service:     opts.service,
			})
			result.Files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// applyFixes generates stable ids for every control reported without one.
// Files are fixed one after another against a single registry, so ids stay
// unique across all checked files.
func applyFixes(result *Result, opts options, stdout io.Writer) error {
	registry := quickfix.NewIDRegistry()
	for _, f := range result.Files {
		registry.Collect(f.Doc)
	}

	for _, f := range result.Files {
		var spans []xmldoc.Span
		for _, d := range f.Diagnostics {
			if d.Kind == validation.NonStableID {
				spans = append(spans, d.Span)
			}
		}
		if len(spans) == 0 {
			continue
		}

		edits := quickfix.StableIDFixes(f.Doc, spans, registry, opts.prefix)
		fixed := quickfix.Fix(f.Path, f.Text, edits)
		if !fixed.HasChanges() {
			continue
		}

		if opts.diff {
			cli.Write(stdout, fixed.Diff())
			continue
		}

		info, err := os.Stat(f.Path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.Path, []byte(fixed.Fixed), info.Mode().Perm()); err != nil {
			return err
		}
		if !opts.json {
			cli.Writef(stdout, "%s: added %d id(s)\n", f.Path, fixed.Applied)
		}

		f.Text = fixed.Fixed
		f.Doc = xmldoc.Parse(f.Text)
		f.Diagnostics = validation.Validate(f.Doc, opts.model, validation.Options{
			FlexEnabled: opts.flex,
			Service:     opts.service,
		})
	}
	return nil
}

// expandPath expands a path to the views and fragments to check. Files
// named explicitly are always checked.
func expandPath(path string, matches func(string) bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != path && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "dist") {
				return filepath.SkipDir
			}
			return nil
		}
		if matches(p) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
