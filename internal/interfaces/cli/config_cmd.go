package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/hivscreen/internal/config"
	"github.com/turtacn/hivscreen/pkg/errors"
)

var configInitForce bool

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the hivscreen configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Long: `Write every setting with its default value to path (default
./` + config.DefaultFileName + `).  An existing file is kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteFile(config.NewDefaultConfig(), path, configInitForce); err != nil {
				return errors.Wrap(err, errors.ErrCodeValidation, "failed to write configuration").WithDetail("path=" + path)
			}
			PrintSuccess(cmd, "configuration written to "+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after files, env and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := redacted(cliCtx.Config)
			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode configuration")
			}
			return enc.Close()
		},
	}
}

// redacted returns a copy of cfg with credentials masked.
func redacted(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Cache.Password != "" {
		out.Cache.Password = "******"
	}
	if out.Storage.SecretAccessKey != "" {
		out.Storage.SecretAccessKey = "******"
	}
	return &out
}

//Personal.AI order the ending
