// Package cli wires the quarry commands together.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quarrylabs/quarry-cli/internal/backup"
	"github.com/quarrylabs/quarry-cli/internal/config"
	"github.com/quarrylabs/quarry-cli/internal/fetch"
	"github.com/quarrylabs/quarry-cli/internal/logging"
	"github.com/quarrylabs/quarry-cli/internal/paper"
	"github.com/quarrylabs/quarry-cli/internal/plugins"
	"github.com/quarrylabs/quarry-cli/internal/process"
	"github.com/quarrylabs/quarry-cli/internal/server"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// App holds the dependencies shared by all commands. It is built once
// per invocation after the persistent flags are parsed.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Instance *server.Instance
	Runner   *process.Runner
	Plugins  *plugins.Manager
	Paper    *paper.Client
	Getter   *fetch.FileGetter

	configPath string
}

// newApp loads configuration and constructs the shared dependencies,
// honoring the root command's persistent flags.
func newApp(cmd *cobra.Command) (*App, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if instanceDir, _ := cmd.Flags().GetString("instance"); instanceDir != "" {
		cfg.InstanceDir = instanceDir
	}
	if logLevel, _ := cmd.Flags().GetString("log-level"); cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	inst := server.NewInstance(cfg.InstanceDir)
	getter := fetch.NewFileGetter()

	return &App{
		Config:     cfg,
		Logger:     logger,
		Instance:   inst,
		Runner:     process.NewRunner(inst, cfg, logger),
		Plugins:    plugins.NewManager(inst.PluginsDir(), getter, logger),
		Paper:      paper.NewClient(""),
		Getter:     getter,
		configPath: configPath,
	}, nil
}

// NewUploader builds the backup uploader from the app's storage
// configuration.
func (a *App) NewUploader() (*backup.Uploader, error) {
	return backup.NewUploader(a.Config.Storage, a.Logger)
}

// NewRootCommand builds the quarry command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quarry",
		Short: "Quarry - local Minecraft server manager",
		Long: `Quarry manages a local PaperMC server instance: it provisions the
server jar, starts and stops the server, manages installed plugins,
and edits the server port.

Run 'quarry init' once to configure the instance, then 'quarry install'
to download the server, or 'quarry console' for the interactive menu.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.quarry/config.yaml)")
	rootCmd.PersistentFlags().String("instance", "", "Server instance directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewRestartCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewPluginsCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewBackupCommand())
	rootCmd.AddCommand(NewConsoleCommand())

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
