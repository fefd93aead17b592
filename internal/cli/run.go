package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/plugins"
)

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the server in the foreground",
		Long: `Start the server as a child process attached to this terminal.

The server console becomes your console: type server commands directly
(including 'stop' to shut it down). The command returns when the server
exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			fmt.Printf("🚀 Starting server in %s\n", app.Instance.Dir)
			return app.Runner.RunForeground()
		},
	}
}

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running server",
		Long: `Stop a server started by quarry. The server is asked to shut down
gracefully and killed if it does not exit within the timeout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			fmt.Println("🛑 Stopping server...")
			if err := app.Runner.StopByPid(); err != nil {
				return err
			}
			fmt.Println("✅ Server stopped")
			return nil
		},
	}
}

// NewRestartCommand creates the restart command
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			if _, running := app.Runner.RunningPID(); running {
				fmt.Println("🛑 Stopping server...")
				if err := app.Runner.StopByPid(); err != nil {
					return err
				}
				time.Sleep(2 * time.Second)
			}

			fmt.Printf("🚀 Starting server in %s\n", app.Instance.Dir)
			return app.Runner.RunForeground()
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the instance state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Logger.Sync()

			printStatus(app)
			return nil
		},
	}
}

func printStatus(app *App) {
	inst := app.Instance

	fmt.Printf("Instance:  %s\n", inst.Dir)

	if inst.Installed() {
		fmt.Println("Server:    installed")
	} else {
		fmt.Println("Server:    not installed (run 'quarry install')")
	}

	if inst.EULAAccepted() {
		fmt.Println("EULA:      accepted")
	} else {
		fmt.Println("EULA:      not accepted")
	}

	if port, err := inst.Port(); err == nil {
		fmt.Printf("Port:      %d\n", port)
	} else {
		fmt.Println("Port:      unknown (no server.properties)")
	}

	infos, err := app.Plugins.List()
	switch {
	case err == nil:
		fmt.Printf("Plugins:   %d installed\n", len(infos))
	case errors.Is(err, plugins.ErrNoPluginsDir):
		fmt.Println("Plugins:   none")
	default:
		fmt.Printf("Plugins:   unreadable (%v)\n", err)
	}

	if pid, running := app.Runner.RunningPID(); running {
		fmt.Printf("Running:   yes (pid %d)\n", pid)
	} else {
		fmt.Println("Running:   no")
	}
}
