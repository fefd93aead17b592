package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/server"
)

// NewConfigCommand creates the config command tree
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change server configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPortCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			cfg := app.Config
			fmt.Printf("Instance directory: %s\n", cfg.InstanceDir)
			fmt.Printf("Java binary:        %s\n", cfg.JavaBin)
			fmt.Printf("JVM heap:           %s - %s\n", cfg.MinMemory, cfg.MaxMemory)
			fmt.Printf("Default port:       %d\n", cfg.Port)

			if port, err := app.Instance.Port(); err == nil {
				fmt.Printf("Configured port:    %d (%s)\n", port, server.PropertiesName)
			} else {
				fmt.Printf("Configured port:    none (%s missing or malformed)\n", server.PropertiesName)
			}

			if cfg.Storage.Endpoint != "" {
				fmt.Printf("Backup storage:     %s/%s\n", cfg.Storage.Endpoint, cfg.Storage.Bucket)
			} else {
				fmt.Println("Backup storage:     not configured")
			}
			return nil
		},
	}
}

func newConfigPortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "port <port>",
		Short: "Change the server port",
		Long: `Rewrite the server-port line in server.properties. Every other line
of the file is left exactly as it was.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[0], err)
			}
			if err := server.ValidatePort(port); err != nil {
				return err
			}

			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			if _, err := os.Stat(app.Instance.PropertiesPath()); err != nil {
				return fmt.Errorf("no %s found at %s, run 'quarry install' first",
					server.PropertiesName, app.Instance.Dir)
			}

			if err := app.Instance.SetPort(port); err != nil {
				return err
			}

			fmt.Printf("✅ Server port set to %d\n", port)
			if _, running := app.Runner.RunningPID(); running {
				fmt.Println("⚠️  The server is running; restart it for the change to take effect.")
			}
			return nil
		},
	}
}
