package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/pocketbible/configs"
	"github.com/Aman-CERP/pocketbible/internal/config"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user configuration file.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/pocketbible/config.yaml)
  3. Project config (.pocketbible.yaml)
  4. Environment variables (POCKETBIBLE_*)
  5. --external and --bundled flags`,
		Example: `  # Create user config with defaults
  pocketbible config init

  # Show effective configuration
  pocketbible config show

  # Undo the last change made by init --force
  pocketbible config restore`,
	}

	lenient := map[string]string{lenientConfig: "true"}
	for _, sub := range []*cobra.Command{
		newConfigInitCmd(e),
		newConfigShowCmd(e),
		newConfigPathCmd(),
		newConfigBackupsCmd(e),
		newConfigRestoreCmd(e),
	} {
		sub.Annotations = lenient
		cmd.AddCommand(sub)
	}

	return cmd
}

func newConfigInitCmd(e *env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from a commented template.

With --force an existing file is backed up, then rewritten with any new
defaults filled in. Existing settings are preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := e.out(cmd)
			path := config.GetUserConfigPath()

			if !config.UserConfigExists() {
				dir := config.GetUserConfigDir()
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return bberrors.IOFailure("create", dir, err)
				}
				if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
					return bberrors.IOFailure("write", path, err)
				}
				w.Success("Created user configuration")
				w.KeyValue("Location", path)
				return nil
			}

			if !force {
				w.Warning("User configuration already exists")
				w.KeyValue("Location", path)
				w.Status("", "Use --force to rewrite it with new defaults (settings are kept)")
				return nil
			}

			backup, err := config.BackupUserConfig()
			if err != nil {
				return err
			}
			existing, err := config.LoadUserConfig()
			if err != nil {
				return err
			}
			if existing == nil {
				return bberrors.New(bberrors.ErrCodeConfigNotFound, "user configuration disappeared during upgrade", nil)
			}
			if err := existing.WriteYAML(path); err != nil {
				return err
			}

			e.log().Info("user configuration upgraded", "path", path, "backup", backup)
			w.Success("Configuration upgraded")
			w.KeyValue("Location", path)
			w.KeyValue("Backup", backup)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and rewrite an existing configuration")

	return cmd
}

func newConfigShowCmd(e *env) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Example: `  pocketbible config show
  pocketbible config show --source user --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				cfg = e.cfg
			case "defaults":
				cfg = config.NewConfig()
			case "user":
				var err error
				if cfg, err = config.LoadUserConfig(); err != nil {
					return err
				}
				if cfg == nil {
					return bberrors.New(bberrors.ErrCodeConfigNotFound,
						"no user configuration at "+config.GetUserConfigPath(), nil).
						WithSuggestion("Run 'pocketbible config init' to create one")
				}
			default:
				return bberrors.ConfigError(fmt.Sprintf("unknown source %q", source), nil).
					WithSuggestion("Use merged, user or defaults")
			}

			if ok, err := e.emit(cmd, cfg); ok {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return bberrors.InternalError("failed to marshal config", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigBackupsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List user config backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backups, err := config.ListUserConfigBackups()
			if err != nil {
				return err
			}
			if e.json {
				if backups == nil {
					backups = []string{}
				}
				return e.out(cmd).JSON(backups)
			}
			w := e.out(cmd)
			if len(backups) == 0 {
				w.Status("", "No backups")
				return nil
			}
			for i, b := range backups {
				w.Item(i+1, b)
			}
			return nil
		},
	}
}

func newConfigRestoreCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore the user config from a backup (default: newest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var backup string
			if len(args) == 1 {
				backup = args[0]
			} else {
				backups, err := config.ListUserConfigBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return bberrors.New(bberrors.ErrCodeConfigNotFound, "no user config backups", nil)
				}
				backup = backups[0]
			}

			if err := config.RestoreUserConfig(backup); err != nil {
				return err
			}
			e.log().Info("user configuration restored", "backup", backup)
			w := e.out(cmd)
			w.Success("Configuration restored")
			w.KeyValue("From", backup)
			return nil
		},
	}
}
