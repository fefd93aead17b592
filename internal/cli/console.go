package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/plugins"
	"github.com/quarrylabs/quarry-cli/internal/process"
	"github.com/quarrylabs/quarry-cli/internal/server"
)

// NewConsoleCommand creates the console command
func NewConsoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive menu for all server actions",
		Long: `Launch an interactive menu covering the full quarry surface: install,
start, stop, plugin management, port configuration, and backups.

Navigate with the arrow keys (or j/k), confirm with Enter, quit with q.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd)
		},
	}
}

// consoleAction is one entry of the fixed action menu.
type consoleAction struct {
	label string
	run   func(cmd *cobra.Command, app *App, s *consoleSession) error
}

// consoleSession carries state across menu iterations, most importantly
// the handle of a server started from this console.
type consoleSession struct {
	handle *process.Handle
}

func consoleActions() []consoleAction {
	return []consoleAction{
		{"Show status", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			printStatus(app)
			return nil
		}},
		{"Install or update server", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return runInstall(cmd, "", &InstallFlags{Force: app.Instance.Installed()})
		}},
		{"Start server", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return consoleStartServer(app, s)
		}},
		{"Stop server", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return consoleStopServer(app, s)
		}},
		{"List plugins", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return runPluginsList(cmd)
		}},
		{"Install plugin", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			p := newPrompter(os.Stdin, os.Stdout)
			src := p.String("Plugin source (URL or local path)", "")
			if src == "" {
				fmt.Println("Aborted.")
				return nil
			}
			return runPluginsInstall(cmd, src, false)
		}},
		{"Remove plugins", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return consoleRemovePlugins(app)
		}},
		{"Change server port", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return consoleChangePort(app)
		}},
		{"Create backup", func(cmd *cobra.Command, app *App, s *consoleSession) error {
			return runBackup(cmd, false, false)
		}},
	}
}

// consoleStartServer launches the server in the background with a
// managed stdin, so the console's own stop action can shut it down
// gracefully. Server output streams to this terminal.
func consoleStartServer(app *App, s *consoleSession) error {
	if s.handle != nil {
		fmt.Printf("⚠️  Server already running (pid %d)\n", s.handle.PID())
		return nil
	}

	handle, err := app.Runner.Start()
	if err != nil {
		return err
	}
	s.handle = handle
	fmt.Printf("🚀 Server started (pid %d). Stop it from this menu.\n", handle.PID())
	return nil
}

// consoleStopServer stops a server started from this console via its
// stop command, and falls back to the pid file for servers started by
// another invocation.
func consoleStopServer(app *App, s *consoleSession) error {
	if s.handle != nil {
		fmt.Println("🛑 Stopping server...")
		if err := s.handle.Stop(); err != nil {
			fmt.Printf("⚠️  Server exited with: %v\n", err)
		}
		s.handle = nil
		fmt.Println("✅ Server stopped")
		return nil
	}

	if err := app.Runner.StopByPid(); err != nil {
		fmt.Printf("⚠️  %v\n", err)
		return nil
	}
	fmt.Println("✅ Server stopped")
	return nil
}

// runConsole loops: show the menu, run the chosen action with normal
// terminal IO, and return to the menu until the user quits. The menu
// itself runs full-screen; actions run outside it so their prompts and
// the server console behave normally.
func runConsole(cmd *cobra.Command) error {
	actions := consoleActions()
	session := &consoleSession{}

	for {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		model := newConsoleModel(app, actions)
		program := tea.NewProgram(model, tea.WithAltScreen())

		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("console failed: %w", err)
		}

		m := final.(consoleModel)
		if !m.chosen {
			if session.handle != nil {
				fmt.Printf("Server still running (pid %d); stop it with 'quarry stop'.\n", session.handle.PID())
			}
			return nil
		}

		action := actions[m.cursor]
		fmt.Println()
		if err := action.run(cmd, app, session); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		app.Logger.Sync()

		p := newPrompter(os.Stdin, os.Stdout)
		p.String("\nPress Enter to return to the menu", "")
	}
}

// consoleRemovePlugins multi-selects installed plugins and removes them.
func consoleRemovePlugins(app *App) error {
	infos, err := app.Plugins.List()
	if errors.Is(err, plugins.ErrNoPluginsDir) || (err == nil && len(infos) == 0) {
		fmt.Println("No plugins installed.")
		return nil
	}
	if err != nil {
		return err
	}

	options := make([]string, len(infos))
	for i, info := range infos {
		options[i] = fmt.Sprintf("%s (%s)", info.Name, formatSize(info.Size))
	}

	p := newPrompter(os.Stdin, os.Stdout)
	picks, err := p.MultiSelect("Select plugins to remove", options)
	if err != nil {
		return err
	}
	if len(picks) == 0 {
		fmt.Println("Nothing selected.")
		return nil
	}

	if !p.Confirm(fmt.Sprintf("Remove %d plugin(s)?", len(picks)), false) {
		fmt.Println("Aborted.")
		return nil
	}

	for _, idx := range picks {
		if err := app.Plugins.Remove(infos[idx].Name); err != nil {
			fmt.Printf("⚠️  %v\n", err)
			continue
		}
		fmt.Printf("✅ Removed %s\n", infos[idx].Name)
	}
	return nil
}

// consoleChangePort prompts for a port and rewrites server.properties.
func consoleChangePort(app *App) error {
	current, err := app.Instance.Port()
	if err != nil {
		return fmt.Errorf("cannot read current port: %w", err)
	}

	p := newPrompter(os.Stdin, os.Stdout)
	port := p.Int("New server port", current)
	if err := server.ValidatePort(port); err != nil {
		return err
	}

	if err := app.Instance.SetPort(port); err != nil {
		return err
	}
	fmt.Printf("✅ Server port set to %d\n", port)
	return nil
}

var (
	consoleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	consoleCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	consoleDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	consoleWarnStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))
)

// consoleModel is the Bubble Tea model for the action menu. chosen
// distinguishes an Enter selection from quitting the menu.
type consoleModel struct {
	app     *App
	actions []consoleAction
	cursor  int
	chosen  bool
}

func newConsoleModel(app *App, actions []consoleAction) consoleModel {
	return consoleModel{app: app, actions: actions}
}

// Init implements the Bubble Tea init method
func (m consoleModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
			return m, nil

		case "enter":
			m.chosen = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m consoleModel) View() string {
	title := consoleTitleStyle.Render("⛏  Quarry Console")

	status := m.statusLine()

	var rows []string
	for i, action := range m.actions {
		if i == m.cursor {
			rows = append(rows, consoleCursorStyle.Render("› "+action.label))
		} else {
			rows = append(rows, "  "+action.label)
		}
	}
	menu := lipgloss.JoinVertical(lipgloss.Left, rows...)

	footer := consoleDimStyle.Render("Controls: [↑↓/jk] Navigate | [Enter] Select | [q] Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, "", menu, "", footer)
}

// statusLine summarizes the instance for the menu header.
func (m consoleModel) statusLine() string {
	inst := m.app.Instance

	if !inst.Installed() {
		return consoleWarnStyle.Render("Server not installed")
	}

	state := "stopped"
	if pid, running := m.app.Runner.RunningPID(); running {
		state = fmt.Sprintf("running (pid %d)", pid)
	}

	port := "?"
	if p, err := inst.Port(); err == nil {
		port = fmt.Sprintf("%d", p)
	}

	return consoleDimStyle.Render(fmt.Sprintf("%s | port %s | %s", inst.Dir, port, state))
}
