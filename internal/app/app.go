package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/specialistvlad/vuldesign/internal/console"
	"github.com/specialistvlad/vuldesign/internal/ctxlog"
	"github.com/specialistvlad/vuldesign/internal/design"
	"github.com/specialistvlad/vuldesign/internal/hcl"
	"github.com/specialistvlad/vuldesign/internal/model"
)

// ConsoleCommand starts the interactive console instead of running a single
// command.
const ConsoleCommand = "console"

// historyFile holds console history in the user's home directory.
const historyFile = ".vuldesign_history"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	settings   *Settings
	design     *design.Design
	dispatcher *console.Dispatcher
}

// NewApp loads the project named by cfg and returns an App ready to run the
// configured command.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	settings, err := settingsFor(cfg)
	if err != nil {
		return nil, err
	}
	merged := settings.merge(*cfg)

	logger := newLogger(merged.LogLevel, merged.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	project, err := hcl.NewLoader().Load(ctx, merged.ProjectPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load project")
	}
	applyDefaultTag(project, settings.DefaultTag)

	d := design.New()
	if err := d.Load(ctx, project); err != nil {
		return nil, errors.Wrap(err, "failed to load project")
	}
	logger.Debug("Project loaded.", "path", merged.ProjectPath)

	return &App{
		outW:       outW,
		logger:     logger,
		config:     &merged,
		settings:   settings,
		design:     d,
		dispatcher: console.NewDispatcher(d, hcl.NewWriter(), console.WithSortedExport(settings.SortedOrder)),
	}, nil
}

// applyDefaultTag gives untagged bundles the configured default tag.
func applyDefaultTag(p *model.Project, tag string) {
	if tag == "" {
		return
	}
	for i := range p.Bundles {
		if len(p.Bundles[i].Tags) == 0 {
			p.Bundles[i].Tags = []string{tag}
		}
	}
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	if a.config.Command == ConsoleCommand {
		var history string
		if home, err := os.UserHomeDir(); err == nil {
			history = filepath.Join(home, historyFile)
		}
		return console.Run(ctx, a.outW, a.dispatcher, history)
	}

	args := append([]string{a.config.Command}, a.config.Args...)
	if err := a.dispatcher.Exec(ctx, a.outW, args); err != nil {
		return err
	}
	if a.config.OutPath != "" {
		if err := a.dispatcher.Exec(ctx, a.outW, []string{"export", a.config.OutPath}); err != nil {
			return err
		}
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// Design returns the loaded design. This is primarily for testing.
func (a *App) Design() *design.Design {
	return a.design
}

// Settings returns the settings in effect.
func (a *App) Settings() *Settings {
	return a.settings
}
