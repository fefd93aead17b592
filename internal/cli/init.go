package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry-cli/internal/config"
	"github.com/quarrylabs/quarry-cli/internal/server"
)

// InitFlags holds the command-line flags for the init command
type InitFlags struct {
	InstanceDir    string
	JavaBin        string
	MinMemory      string
	MaxMemory      string
	Port           int
	NonInteractive bool
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	flags := &InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize quarry configuration",
		Long: `Initialize the quarry configuration by setting up required values
interactively or via command-line flags.

This command will guide you through setting up:
- Server instance directory
- Java binary and memory limits
- Default server port

You can use flags for non-interactive setup or run without flags for interactive mode.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.InstanceDir, "instance-dir", "", "Server instance directory")
	cmd.Flags().StringVar(&flags.JavaBin, "java", "", "Java binary used to launch the server")
	cmd.Flags().StringVar(&flags.MinMemory, "min-memory", "", "JVM minimum heap (-Xms)")
	cmd.Flags().StringVar(&flags.MaxMemory, "max-memory", "", "JVM maximum heap (-Xmx)")
	cmd.Flags().IntVar(&flags.Port, "port", 0, "Default server port")
	cmd.Flags().BoolVar(&flags.NonInteractive, "non-interactive", false, "Run in non-interactive mode")

	return cmd
}

func runInit(cmd *cobra.Command, flags *InitFlags) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	nonInteractive := flags.NonInteractive ||
		flags.InstanceDir != "" ||
		flags.JavaBin != "" ||
		flags.MinMemory != "" ||
		flags.MaxMemory != "" ||
		flags.Port > 0

	if nonInteractive {
		applyInitFlags(cfg, flags)
	} else if err := promptInitValues(cfg); err != nil {
		return err
	}

	if err := server.ValidatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	if err := server.NewInstance(cfg.InstanceDir).EnsureDir(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	savedTo := configPath
	if savedTo == "" {
		savedTo, _ = config.DefaultPath()
	}

	fmt.Println("")
	fmt.Println("✅ Configuration saved successfully!")
	fmt.Printf("   Config file: %s\n", savedTo)
	fmt.Printf("   Instance:    %s\n", cfg.InstanceDir)
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("   quarry install    # download the server jar")
	fmt.Println("   quarry start      # run the server")
	fmt.Println("   quarry console    # interactive menu")

	return nil
}

func applyInitFlags(cfg *config.Config, flags *InitFlags) {
	if flags.InstanceDir != "" {
		cfg.InstanceDir = flags.InstanceDir
	}
	if flags.JavaBin != "" {
		cfg.JavaBin = flags.JavaBin
	}
	if flags.MinMemory != "" {
		cfg.MinMemory = flags.MinMemory
	}
	if flags.MaxMemory != "" {
		cfg.MaxMemory = flags.MaxMemory
	}
	if flags.Port > 0 {
		cfg.Port = flags.Port
	}
}

func promptInitValues(cfg *config.Config) error {
	fmt.Println("🚀 Quarry Configuration Setup")
	fmt.Println("")
	fmt.Println("This will guide you through setting up your server instance.")
	fmt.Println("You can press Enter to accept default values shown in brackets.")
	fmt.Println("")

	p := newPrompter(os.Stdin, os.Stdout)

	cfg.InstanceDir = p.String("Instance directory", cfg.InstanceDir)
	cfg.JavaBin = p.String("Java binary", cfg.JavaBin)
	cfg.MinMemory = p.String("JVM minimum heap", cfg.MinMemory)
	cfg.MaxMemory = p.String("JVM maximum heap", cfg.MaxMemory)
	cfg.Port = p.Int("Server port", cfg.Port)

	if p.Confirm("Configure S3 backup uploads?", false) {
		cfg.Storage.Endpoint = p.String("Storage endpoint", cfg.Storage.Endpoint)
		cfg.Storage.AccessKey = p.String("Access key", cfg.Storage.AccessKey)
		cfg.Storage.SecretKey = p.String("Secret key", cfg.Storage.SecretKey)
		cfg.Storage.Bucket = p.String("Bucket", cfg.Storage.Bucket)
		cfg.Storage.UseSSL = p.Confirm("Use TLS?", cfg.Storage.UseSSL)
	}

	return nil
}
