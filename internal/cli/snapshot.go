package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewExportCommand returns the "export" subcommand: the whole table as a
// YAML mapping, to stdout or a file. yaml.v3 sorts mapping keys, so the
// snapshot is deterministic regardless of ordered mode.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every (key, value) pair as a YAML mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			snapshot := map[string]any{}
			for item, err := range store.All(context.Background()) {
				if err != nil {
					return WrapExitError(ExitFailure, "export", err)
				}
				snapshot[item.Key] = item.Value
			}

			data, err := yaml.Marshal(snapshot)
			if err != nil {
				return WrapExitError(ExitFailure, "export: marshal", err)
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "export: write file", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

// NewImportCommand returns the "import" subcommand: upsert every entry
// of a YAML mapping in one transaction.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Upsert every entry of a YAML mapping file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "import: read file", err)
			}
			var snapshot map[string]any
			if err := yaml.Unmarshal(data, &snapshot); err != nil {
				return WrapExitError(ExitCommandError, "import: parse", err)
			}

			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Update(context.Background(), snapshot); err != nil {
				return WrapExitError(ExitFailure, "import", err)
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(fmt.Sprintf("imported %d keys", len(snapshot)))
		},
	}
}
