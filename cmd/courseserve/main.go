// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the course-section autocomplete server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

courseserve answers prefix lookups over a precomputed compressed trie of
course, professor and section identities. It can operate as a MessagePack
IPC server for editor and UI integration, as an HTTP JSON API, or as a CLI
application for testing and debugging.

# Usage

Start the IPC server with the graph found next to the binary:

	courseserve

Use a specific graph file and enable debug mode:

	courseserve -graph /path/to/graph.json -d

Serve HTTP instead of IPC:

	courseserve -http -addr :8080

Run in CLI mode for interactive testing:

	courseserve -c -limit 10

The graph is a serialized directed graph (JSON, or msgpack for .msgpack/.mpk
files) whose nodes carry an edge label "c" and an optional record "d", with
the root keyed "0". A corrupt graph aborts startup. cmd/graphbuild produces
graphs from a CSV of records.

# Configuration

Runtime configuration is managed through a TOML file:

	[server]
	max_limit = 64
	default_limit = 20
	max_input = 120
	rate_limit = 200.0
	rate_burst = 50

	[search]
	advance_penalty = 100
	raw_limit = 20

	[http]
	addr = ":8080"
	enable_metrics = true
	shutdown_timeout = 5

	[cli]
	default_limit = 10

The config file is automatically created with defaults if it doesn't exist.
Edits are picked up while running. search.advance_penalty, the [http]
address and metrics switch, and cli.default_limit are read at startup;
changing them logs a warning and takes effect after a restart.

# HTTP

	GET /api/autocomplete?input=cs1200
	GET /api/autocomplete?prefix=CS&number=1200&professorName=Jane%20Doe&limit=10
	GET /health
	GET /metrics

Successful lookups answer {"message": "success", "data": [...]}; bad
parameters answer 400 {"message": "Incorrect query parameters"}.

# IPC Protocol

See package server for the message types.

	{"id": "req1", "i": "cs1200", "l": 20}
	{"id": "req1", "r": [{"prefix": "CS", "number": "1200"}], "c": 1, "t": 45}

# Command Line Flags

	-graph string
	    Graph file (default: searched next to the binary and in the config dir)
	-config string
	    Config file (default: [UserConfigDir]/courseserve/config.toml)
	-d  Enable debug mode with detailed logging
	-c  Run CLI mode instead of the IPC server
	-http
	    Serve the HTTP API instead of the IPC server
	-addr string
	    HTTP listen address (default from config)
	-limit int
	    Number of results in CLI mode (default from config)
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/courseserve/internal/cli"
	"github.com/bastiangx/courseserve/internal/logger"
	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/api"
	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/bastiangx/courseserve/pkg/server"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	Version = "0.3.0-beta"
	AppName = "courseserve"
	gh      = "https://github.com/bastiangx/courseserve"
)

// sigContext returns a context canceled on SIGINT or SIGTERM.
func sigContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// main wires the packages together for the selected mode.
// It does not implement logic for them and only manages the flow.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	graphPath := flag.String("graph", "", "Graph file (.json, .msgpack, .mpk)")
	configPath := flag.String("config", "", "Config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpMode := flag.Bool("http", false, "Serve the HTTP API instead of IPC")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	limit := flag.Int("limit", 0, fmt.Sprintf("Number of results in CLI mode (default %d)", defaultConfig.CLI.DefaultLimit))

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	ctx, stop := sigContext()
	defer stop()

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	if *debugMode {
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
	}

	resolvedGraph, err := pathResolver.ResolveGraphFile(*graphPath)
	if err != nil {
		log.Fatalf("Failed to find graph file: %v", err)
	}
	store, err := graph.LoadFile(resolvedGraph)
	if err != nil {
		log.Fatalf("Failed to load graph %s: %v", resolvedGraph, err)
	}
	stats := store.Stats()
	log.Debugf("Loaded graph %s: nodes=[%d] edges=[%d] records=[%d]", resolvedGraph, stats.Nodes, stats.Edges, stats.Records)

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfigPath))
	live := config.NewLive(appConfig, activeConfigPath)
	go func() {
		if err := live.Watch(ctx); err != nil {
			log.Warnf("Config watching disabled: %v", err)
		}
	}()

	completer := suggest.NewCompleter(store, suggest.WithAdvancePenalty(appConfig.Search.AdvancePenalty))

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		n := *limit
		if n < 1 {
			n = appConfig.CLI.DefaultLimit
		}
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", n)
		handler := cli.NewInputHandler(completer, n, os.Stdin, os.Stdout)
		runUntilDone(ctx, func() error { return handler.Start(ctx) }, "CLI error")
		return
	}

	if *httpMode {
		if !*debugMode {
			gin.SetMode(gin.ReleaseMode)
		}
		listen := appConfig.HTTP.Addr
		if *addr != "" {
			listen = *addr
		}
		router := api.NewRouter(api.NewHandlers(completer, live), live)
		showStartupInfo(resolvedGraph, stats, "http "+listen)
		if err := api.Serve(ctx, listen, router, live); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, live, os.Stdin, os.Stdout)
	showStartupInfo(resolvedGraph, stats, "ipc stdin/stdout")
	runUntilDone(ctx, func() error { return srv.Start(ctx) }, "Server error")
}

// runUntilDone runs fn until it returns or ctx is canceled. Blocking stdin
// reads cannot observe ctx, so a signal exits without waiting for them.
func runUntilDone(ctx context.Context, fn func() error, what string) {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("%s: %v", what, err)
		}
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ courseserve ] Fast course, professor and section autocomplete")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(graphFile string, stats graph.Stats, mode string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "=============")
	fmt.Fprintln(os.Stderr, " courseserve ")
	fmt.Fprintln(os.Stderr, "=============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("graph: ( %s )", graphFile)
	log.Infof("records: %s  nodes: %s", utils.FormatWithCommas(stats.Records), utils.FormatWithCommas(stats.Nodes))
	log.Infof("mode: %s", mode)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "=============")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
