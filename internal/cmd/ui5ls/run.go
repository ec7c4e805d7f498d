package ui5ls

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/albertocavalcante/ui5ls/internal/cli"
	"github.com/albertocavalcante/ui5ls/internal/completion"
	"github.com/albertocavalcante/ui5ls/internal/lsp"
	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/loader"
	"github.com/albertocavalcante/ui5ls/internal/ui5config"
	"github.com/albertocavalcante/ui5ls/internal/version"
)

// Run executes ui5ls with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		versionFlag bool
		verboseFlag bool
		configFlag  string
		noWatchFlag bool
	)

	fs := flag.NewFlagSet("ui5ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")
	fs.StringVar(&configFlag, "config", "", "path to ui5ls.toml or ui5ls.yaml (default: discovered)")
	fs.BoolVar(&noWatchFlag, "no-watch", false, "do not reload framework metadata when it changes")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: ui5ls [flags]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Language server for SAPUI5 XML views and fragments.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "The server communicates over stdio using JSON-RPC 2.0.")
		cli.Writeln(stderr, "Configure your editor to launch this binary for *.view.xml and")
		cli.Writeln(stderr, "*.fragment.xml files.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Features:")
		cli.Writeln(stderr, "  - Completion of classes, aggregations, attributes and values")
		cli.Writeln(stderr, "  - Diagnostics for unknown names, misplaced elements and bad values")
		cli.Writeln(stderr, "  - Stable id quick fixes")
		cli.Writeln(stderr, "  - Hover documentation, folding and document symbols")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "ui5ls %s\n", version.String())
		return cli.ExitOK
	}

	if verboseFlag {
		log.SetOutput(stderr)
		log.SetFlags(log.Ltime | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(configFlag)
	if err != nil {
		cli.Writef(stderr, "ui5ls: %v\n", err)
		return cli.ExitError
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := lsp.NewServer(cancel, lsp.Options{
		Settings: completion.Settings{
			Deprecated:   cfg.CodeAssist.Deprecated,
			Experimental: cfg.CodeAssist.Experimental,
		},
		FlexEnabled: cfg.Project.FlexEnabled,
		IDPrefix:    cfg.Project.IDPrefix,
		Match:       cfg.Matches,
	})

	if len(cfg.Framework.Metadata) > 0 {
		cache := loader.NewCache()
		key := loader.Key{Framework: cfg.Framework.Name, Version: cfg.Framework.Version}
		cache.Register(key, cfg.Framework.Metadata...)

		loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Framework.LoadTimeout.Duration)
		m, err := cache.Get(loadCtx, key)
		cancelLoad()
		if err != nil {
			// The server still offers syntax-level features without a model.
			log.Printf("ui5ls: loading %s: %v", key, err)
		} else {
			server.SetModel(m)
			log.Printf("ui5ls: loaded %s", m)
		}

		if !noWatchFlag {
			w, err := loader.NewWatcher(cache)
			if err != nil {
				log.Printf("ui5ls: %v", err)
			} else {
				defer w.Close()
				go server.WatchReloads(ctx, w.Events)
			}
		}
	}

	if path := cfg.Service.Metadata; path != "" {
		md, err := odata.LoadEDMXFile(path)
		if err != nil {
			log.Printf("ui5ls: loading service metadata: %v", err)
		} else {
			server.SetService(md)
		}
	}

	rwc := &stdioConn{
		Reader: stdin,
		Writer: stdout,
	}
	conn := lsp.NewConn(rwc, server)
	server.SetConn(conn)

	log.Printf("ui5ls: starting server")

	if err := conn.Run(ctx); err != nil && ctx.Err() == nil {
		cli.Writef(stderr, "ui5ls: %v\n", err)
		return cli.ExitError
	}

	log.Printf("ui5ls: server stopped")
	return cli.ExitOK
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
	cfg, found, err := ui5config.DiscoverConfig("")
	if err != nil {
		return nil, err
	}
	if found != "" {
		log.Printf("ui5ls: using config %s", found)
	}
	return cfg, nil
}

// stdioConn wraps stdin/stdout as an io.ReadWriteCloser.
type stdioConn struct {
	io.Reader
	io.Writer
}

func (s *stdioConn) Close() error {
	return nil
}
