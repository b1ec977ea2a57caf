package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki"
	"github.com/aretw0/mdwiki/pkg/adapters/fs"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

var (
	verbose    bool
	configPath string
	urlFlag    string
	spaceFlag  int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdwiki",
	Short: "A command-line client for markdown wikis",
	Long: `mdwiki browses and edits a wiki of workspaces, pages and markdown documents
over the wiki's HTTP API. Run "mdwiki shell" for an interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest .mdwiki.yaml)")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&spaceFlag, "space", "s", 0, "Workspace id (default: the open one, then config)")
}

// app holds the workbench across commands. A one-shot invocation builds it
// once; the shell keeps it alive so the session and navigation persist.
var app state

type state struct {
	cfg    mdwiki.Config
	wb     *mdwiki.Workbench
	drafts *fs.Drafts
}

func (s *state) bench() (*mdwiki.Workbench, error) {
	if s.wb != nil {
		return s.wb, nil
	}
	cfg, err := mdwiki.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if urlFlag != "" {
		cfg.URL = urlFlag
	}
	opts := append(cfg.Options(), mdwiki.WithLogger(slog.Default()))
	wb, err := mdwiki.New(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}
	s.cfg, s.wb = cfg, wb
	return wb, nil
}

func (s *state) draftStore() (*fs.Drafts, error) {
	if s.drafts != nil {
		return s.drafts, nil
	}
	if _, err := s.bench(); err != nil {
		return nil, err
	}
	dir := s.cfg.Drafts
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate drafts dir: %w", err)
		}
		dir = filepath.Join(cache, "mdwiki", "drafts")
	}
	s.drafts = fs.NewDrafts(fs.Config{Path: dir, Logger: slog.Default()})
	return s.drafts, nil
}

// space picks the workspace a command acts on and opens it in the tree.
func (s *state) space(ctx context.Context) (*mdwiki.Workbench, int, error) {
	wb, err := s.bench()
	if err != nil {
		return nil, 0, err
	}
	nav := wb.Tree.Navigation()
	ws := spaceFlag
	if ws == 0 && nav.Mode == core.ModeInside {
		ws = nav.WorkspaceID
	}
	if ws == 0 {
		ws = s.cfg.Workspace
	}
	if ws == 0 {
		return nil, 0, fmt.Errorf("no workspace selected: use --space or \"spaces open\"")
	}
	if !nav.IsInside(ws) {
		if err := wb.Tree.Navigate(ctx, ws); err != nil {
			return nil, 0, err
		}
	}
	return wb, ws, nil
}

// openPage resolves page pg of the selected workspace through the gate.
func (s *state) openPage(ctx context.Context, arg string) (*wiki.Editor, error) {
	wb, ws, err := s.space(ctx)
	if err != nil {
		return nil, err
	}
	pg, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	ed, err := wb.OpenPage(ctx, ws, pg)
	if err != nil {
		if wb.Gate.Denied() {
			return nil, fmt.Errorf("%s: %w", wiki.AccessDeniedMessage, err)
		}
		return nil, err
	}
	return ed, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
