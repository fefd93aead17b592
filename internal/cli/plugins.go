package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/plugins"
)

// NewPluginsCommand creates the plugins command tree
func NewPluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage server plugins",
		Long: `Manage the add-on jars installed in the server's plugins directory.

Plugins are identified by their jar filename. Install sources can be
https URLs or local file paths.`,
		Example: `  # List installed plugins
  quarry plugins list

  # Install from a URL or a local path
  quarry plugins install https://example.com/worldedit.jar
  quarry plugins install ./downloads/essentials.jar

  # Update an installed plugin
  quarry plugins update worldedit --from https://example.com/worldedit.jar

  # Remove a plugin
  quarry plugins remove worldedit`,
	}

	cmd.AddCommand(newPluginsListCommand())
	cmd.AddCommand(newPluginsInstallCommand())
	cmd.AddCommand(newPluginsUpdateCommand())
	cmd.AddCommand(newPluginsRemoveCommand())

	return cmd
}

func newPluginsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsList(cmd)
		},
	}
}

func newPluginsInstallCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install <url-or-path>",
		Short: "Install a plugin",
		Long:  `Download or copy a plugin jar into the plugins directory, creating it if needed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsInstall(cmd, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an already installed jar")

	return cmd
}

func newPluginsUpdateCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update an installed plugin",
		Long:  `Replace an installed plugin jar with a fresh copy from --from.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			return runPluginsUpdate(cmd, args[0], from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source URL or local path for the new jar")

	return cmd
}

func newPluginsRemoveCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an installed plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsRemove(cmd, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runPluginsList(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	infos, err := app.Plugins.List()
	if errors.Is(err, plugins.ErrNoPluginsDir) {
		fmt.Printf("No plugins directory at %s yet. Install a plugin to create it.\n", app.Plugins.Dir())
		return nil
	}
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No plugins installed.")
		return nil
	}

	fmt.Printf("Installed plugins (%d):\n\n", len(infos))

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
	fmt.Fprintln(w, "----\t----\t--------")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			info.Name,
			formatSize(info.Size),
			info.Modified.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}

func runPluginsInstall(cmd *cobra.Command, src string, force bool) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	fmt.Printf("📦 Installing plugin from %s\n", src)

	info, err := app.Plugins.Install(context.Background(), src, force)
	if errors.Is(err, plugins.ErrAlreadyInstalled) {
		return fmt.Errorf("%v (use --force to overwrite)", err)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✅ Installed %s (%s)\n", info.Name, formatSize(info.Size))
	return nil
}

func runPluginsUpdate(cmd *cobra.Command, name, from string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	fmt.Printf("🔄 Updating plugin: %s\n", name)

	if err := app.Plugins.Update(context.Background(), name, from); err != nil {
		return err
	}

	fmt.Printf("✅ Updated %s\n", name)
	return nil
}

func runPluginsRemove(cmd *cobra.Command, name string, yes bool) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	if !yes {
		p := newPrompter(os.Stdin, os.Stdout)
		if !p.Confirm(fmt.Sprintf("Remove plugin %q?", name), false) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	err = app.Plugins.Remove(name)
	if errors.Is(err, plugins.ErrNotInstalled) {
		fmt.Printf("Plugin %q is not installed, nothing to do.\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("✅ Removed %s\n", name)
	return nil
}

// formatSize formats file size for display
func formatSize(size int64) string {
	if size == 0 {
		return "0 B"
	}

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"KB", "MB", "GB"}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(size)/float64(div), units[exp])
}
