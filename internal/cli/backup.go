package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/backup"
)

// NewBackupCommand creates the backup command
func NewBackupCommand() *cobra.Command {
	var upload bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the server instance",
		Long: `Create a tar.gz snapshot of the instance under <instance>/backups.
Worlds, configuration, and plugins are included; the server jar itself
is re-downloadable and excluded.

With --upload the archive is also pushed to the configured S3-compatible
storage bucket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd, upload, verify)
		},
	}

	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the archive to the configured storage bucket")
	cmd.Flags().BoolVar(&verify, "verify", false, "List the archive contents after creating it")

	return cmd
}

func runBackup(cmd *cobra.Command, upload, verify bool) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Logger.Sync()

	if _, running := app.Runner.RunningPID(); running {
		fmt.Println("⚠️  The server is running; world files may be mid-write. Stop it for a consistent backup.")
	}

	fmt.Println("📦 Creating backup...")

	archiver := backup.NewArchiver(app.Instance, app.Logger)
	path, err := archiver.Create()
	if err != nil {
		return err
	}
	fmt.Printf("✅ Backup written to %s\n", path)

	if verify {
		names, err := backup.Entries(path)
		if err != nil {
			return err
		}
		fmt.Printf("\nArchive contents (%d entries):\n", len(names))
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
	}

	if upload {
		uploader, err := app.NewUploader()
		if err != nil {
			return err
		}

		fmt.Println("☁️  Uploading...")
		object, err := uploader.Upload(context.Background(), path)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Uploaded as %s/%s\n", app.Config.Storage.Bucket, object)
	}

	return nil
}
