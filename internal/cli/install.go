package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/paper"
)

// InstallFlags holds the command-line flags for the install command
type InstallFlags struct {
	From       string
	Build      int
	Force      bool
	AcceptEULA bool
}

// NewInstallCommand creates the install command
func NewInstallCommand() *cobra.Command {
	flags := &InstallFlags{}

	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Download and install the server jar",
		Long: `Download and install the PaperMC server jar into the instance
directory, then accept the EULA and write the initial server.properties.

Without arguments the available versions are fetched from the PaperMC
catalog and offered as an interactive selection. With --from the catalog
is bypassed and the jar is fetched from a URL or copied from a local
path instead.`,
		Example: `  # Pick a version interactively
  quarry install

  # Install a specific version (latest build)
  quarry install 1.21.4

  # Install from a local jar or a custom URL
  quarry install --from ./paper-custom.jar
  quarry install --from https://example.com/paper.jar`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) > 0 {
				version = args[0]
			}
			return runInstall(cmd, version, flags)
		},
	}

	cmd.Flags().StringVar(&flags.From, "from", "", "Install from a URL or local path instead of the catalog")
	cmd.Flags().IntVar(&flags.Build, "build", 0, "Specific build number (default is the latest)")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Reinstall even if a server jar is already present")
	cmd.Flags().BoolVar(&flags.AcceptEULA, "accept-eula", false, "Accept the Minecraft EULA without prompting")

	return cmd
}

func runInstall(cmd *cobra.Command, version string, flags *InstallFlags) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	ctx := context.Background()
	inst := app.Instance

	if inst.Installed() && !flags.Force {
		fmt.Printf("✅ Server already installed at %s (use --force to reinstall)\n", inst.JarPath())
		return finishInstall(app, flags)
	}

	if err := inst.EnsureDir(); err != nil {
		return err
	}

	if flags.From != "" {
		fmt.Printf("📦 Installing server jar from %s\n", flags.From)
		if err := app.Getter.Get(ctx, flags.From, inst.JarPath(), true); err != nil {
			return fmt.Errorf("failed to install server jar: %w", err)
		}
		return finishInstall(app, flags)
	}

	if version == "" {
		version, err = selectVersion(ctx, app)
		if err != nil {
			return err
		}
	}

	build := flags.Build
	if build == 0 {
		fmt.Printf("🔍 Resolving latest build for %s...\n", version)
		build, err = app.Paper.LatestBuild(ctx, version)
		if err != nil {
			return err
		}
	}

	dl, err := app.Paper.ResolveDownload(ctx, version, build)
	if err != nil {
		return err
	}

	fmt.Printf("📦 Downloading Paper %s build %d...\n", dl.Version, dl.Build)

	// Download to a temp name first so a failed transfer never leaves a
	// half-written server.jar behind.
	tmp := inst.JarPath() + ".download"
	if err := app.Getter.Get(ctx, dl.URL, tmp, true); err != nil {
		return fmt.Errorf("failed to download server jar: %w", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return fmt.Errorf("failed to read downloaded jar: %w", err)
	}
	if err := paper.VerifyChecksum(data, dl.Sha256); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, inst.JarPath()); err != nil {
		return fmt.Errorf("failed to move server jar into place: %w", err)
	}

	fmt.Printf("✅ Installed Paper %s build %d\n", dl.Version, dl.Build)
	return finishInstall(app, flags)
}

// selectVersion fetches the catalog and prompts for a version.
func selectVersion(ctx context.Context, app *App) (string, error) {
	fmt.Println("🔍 Fetching available versions...")
	versions, err := app.Paper.Versions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions published")
	}

	// The full list is long; offer the recent ones.
	if len(versions) > 10 {
		versions = versions[:10]
	}

	p := newPrompter(os.Stdin, os.Stdout)
	idx, err := p.Select("Select a version", versions)
	if err != nil {
		return "", err
	}
	return versions[idx], nil
}

// finishInstall handles the EULA and the initial properties file.
func finishInstall(app *App, flags *InstallFlags) error {
	inst := app.Instance

	if !inst.EULAAccepted() {
		accepted := flags.AcceptEULA
		if !accepted {
			fmt.Println("")
			fmt.Println("The server requires accepting the Minecraft EULA:")
			fmt.Println("https://aka.ms/MinecraftEULA")
			p := newPrompter(os.Stdin, os.Stdout)
			accepted = p.Confirm("Accept the EULA?", false)
		}
		if !accepted {
			fmt.Println("⚠️  EULA not accepted. The server will refuse to start until it is.")
			return nil
		}
		if err := inst.AcceptEULA(); err != nil {
			return err
		}
		fmt.Printf("✅ EULA accepted (%s)\n", filepath.Base(inst.EULAPath()))
	}

	if err := inst.WriteDefaultProperties(app.Config.Port); err != nil {
		return err
	}

	fmt.Println("")
	fmt.Println("🎉 Server ready. Start it with: quarry start")
	return nil
}
