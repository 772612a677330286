// Package cli wires settings, logging, the engine and the download pipeline
// into the ytfetch cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/engine"
	"github.com/ytget/ytfetch/internal/history"
	"github.com/ytget/ytfetch/internal/logger"
	"github.com/ytget/ytfetch/internal/platform"
)

// ErrHistoryDisabled is returned by the history command when recording is off.
var ErrHistoryDisabled = errors.New("history is disabled (history.enabled=false)")

// Lister lists playlist entries without downloading
type Lister interface {
	ListEntries(ctx context.Context, url string) ([]platform.PlaylistEntry, error)
}

// App holds the dependencies shared by all commands. Nil fields are
// filled from settings when a command starts.
type App struct {
	Version string
	Out     io.Writer
	Err     io.Writer
	Engine  engine.Engine
	Lister  Lister

	// ReadClipboard returns the clipboard text for --clipboard
	ReadClipboard func() (string, error)

	configFile string
	logLevel   string

	settings *config.Settings
	log      *logrus.Logger
	closer   io.Closer
}

// Execute runs the root command with signal-aware cancellation
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{Version: version, Out: os.Stdout, Err: os.Stderr}
	return app.Command().ExecuteContext(ctx)
}

// Command builds the root command and its subcommands
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:               "ytfetch",
		Short:             "ytfetch downloads YouTube videos and playlists",
		Long:              `ytfetch downloads single videos or ranges of playlists as video, MP3 or M4A files using yt-dlp.`,
		Version:           a.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is "+config.DefaultConfigDir()+"/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		a.checkCommand(),
		a.previewCommand(),
		a.getCommand(),
		a.itemsCommand(),
		a.historyCommand(),
		a.configCommand(),
	)

	if a.Out != nil {
		root.SetOut(a.Out)
	}
	if a.Err != nil {
		root.SetErr(a.Err)
	}
	return root
}

// setup loads settings and builds the logger and engine
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.Out == nil {
		a.Out = cmd.OutOrStdout()
	}
	if a.Err == nil {
		a.Err = cmd.ErrOrStderr()
	}

	settings, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings

	level := settings.GetLogLevel()
	if a.logLevel != "" {
		level = a.logLevel
	}
	log, closer, err := logger.New(logger.Options{
		Level: level,
		File:  settings.GetLogFile(),
		Out:   a.Err,
	})
	if err != nil {
		return err
	}
	a.log = log
	a.closer = closer

	if a.Engine == nil {
		a.Engine = engine.NewYTDLP(
			engine.WithExecutable(settings.GetEngineExecutable()),
			engine.WithAutoInstall(settings.GetEngineAutoInstall()),
			engine.WithProgressInterval(settings.GetProgressInterval()),
			engine.WithLogger(log),
		)
	}
	if a.Lister == nil {
		a.Lister = platform.NewYTDLPParserService()
	}

	log.WithField("config", settings.ConfigFileUsed()).Debug("settings loaded")
	return nil
}

func (a *App) teardown(*cobra.Command, []string) {
	if a.closer != nil {
		a.closer.Close()
	}
}

// openHistory opens the run database, or returns nil when recording is off
func (a *App) openHistory() (*history.Store, error) {
	if !a.settings.GetHistoryEnabled() {
		return nil, nil
	}
	store, err := history.Open(a.settings.GetHistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
