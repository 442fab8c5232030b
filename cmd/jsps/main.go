package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/mcp"
	"github.com/standardbeagle/jsps/internal/version"
)

var cleanupFuncs []func()

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = absRoot
	}

	configPath := c.String("config")
	cfg, err := config.LoadWithRoot(configPath, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if root != "" {
		cfg.Project.Root = root
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Include = append(cfg.Include, includes...)
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludes...))
	}
	if c.IsSet("workers") {
		cfg.Run.Workers = c.Int("workers")
	}
	if c.Bool("yes") {
		cfg.Run.AssumeYes = true
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			debug.LogRun("received signal %v, cancelling", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "jsps",
		Usage:                  "Search files with predicates written in TypeScript",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: <root>/" + config.ConfigFileName + ")",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to search (default: current directory)",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug output to a log file in the temp directory",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("debug-log") {
				return nil
			}
			path, err := debug.InitDebugLogFile()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Debug log: %s\n", path)
			cleanupFuncs = append(cleanupFuncs, func() { _ = debug.CloseDebugLog() })
			return nil
		},
		Commands: []*cli.Command{
			searchCommand(),
			scaffoldCommand(),
			{
				Name:  "template",
				Usage: "Print the search definition template",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprint(c.App.Writer, templateText())
					return err
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the search tools over MCP stdio",
				Action: mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version.FullInfo())
					return err
				},
			},
		},
	}
}

func mcpCommand(c *cli.Context) error {
	// stdout belongs to the protocol
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	debug.LogMCP("starting MCP server with stdio transport, root %s", cfg.Project.Root)
	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func main() {
	defer func() {
		for _, cleanup := range cleanupFuncs {
			cleanup()
		}
	}()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		for _, cleanup := range cleanupFuncs {
			cleanup()
		}
		os.Exit(1)
	}
}
