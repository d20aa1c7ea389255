// Package cli wires the dsboard command line.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/config"
	"github.com/dori/dsboard/internal/logging"
	"github.com/dori/dsboard/internal/ui"
)

// globals holds the persistent flags shared by every command
type globals struct {
	configFile string
	dataDir    string
	verbose    bool
	theme      string
}

// NewRootCmd builds the command tree. The bare command runs the TUI.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "dsboard",
		Short: "dsboard - a kanban board for the Design Sprint",
		Long: `dsboard keeps a five column kanban board in your terminal.

On first start it fetches a seed list of to-dos and spreads them across
Backlog, Todo, In Progress, Review and Done. Grab cards with space, move them
with h/j/k/l and drop them with enter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(g)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/dsboard/config.toml)")
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "Data directory holding the board database")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Mirror log output to stderr")
	root.Flags().StringVar(&g.theme, "theme", "", "Theme (nord, dracula, gruvbox, catppuccin)")

	root.AddCommand(newAddCmd(g))
	root.AddCommand(newListCmd(g))
	root.AddCommand(newSeedCmd(g))
	root.AddCommand(newResetCmd(g))
	root.AddCommand(newConfigCmd(g))
	root.AddCommand(newVersionCmd(version))

	root.Version = version
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig applies flag overrides on top of file and environment
func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.theme != "" {
		cfg.Theme = g.theme
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openApp loads config and opens the board. stderr receives a copy of the
// log when --verbose is set.
func (g *globals) openApp(stderr io.Writer, opts ...app.Option) (*app.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	var mirror io.Writer
	if g.verbose {
		mirror = stderr
	}
	logger, err := logging.New(logging.Options{Path: cfg.LogPath(), Level: cfg.LogLevel, Mirror: mirror})
	if err != nil {
		return nil, err
	}

	return app.New(cfg, append([]app.Option{app.WithLogger(logger)}, opts...)...)
}

func runTUI(g *globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	// the TUI owns the terminal, so logs only go to the file
	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
