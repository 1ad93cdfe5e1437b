package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string // database file, or ":memory:"
	Table   string // backing table name
	Ordered bool   // sort multi-row reads by key
	JSONVal bool   // treat values as JSON instead of plain strings
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kvlite CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kvlite",
		Short: "kvlite - a key/value store over a SQLite table",
		Long: "Dictionary-style access to a two-column SQLite table:\n" +
			"point and bulk reads, upserts, deletes, ordered iteration and\n" +
			"transactional pop.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "kvlite.db", "database file (\":memory:\" for ephemeral)")
	cmd.PersistentFlags().StringVar(&opts.Table, "table", "kv", "backing table name")
	cmd.PersistentFlags().BoolVar(&opts.Ordered, "ordered", false, "sort multi-row reads by key")
	cmd.PersistentFlags().BoolVar(&opts.JSONVal, "json", false, "parse and print values as JSON")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))
	cmd.AddCommand(NewHasCommand(opts))
	cmd.AddCommand(NewPopCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewLenCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore opens the database named by the global flags and binds a
// Store to it. The caller owns the returned DB handle.
func openStore(opts *RootOptions) (*kvlite.DB, *kvlite.Store, error) {
	var db *kvlite.DB
	var err error
	if opts.DBPath == ":memory:" {
		db, err = kvlite.OpenMemory()
	} else {
		db, err = kvlite.Open(opts.DBPath)
	}
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}

	storeOpts := []kvlite.Option{kvlite.WithTable(opts.Table)}
	if opts.Ordered {
		storeOpts = append(storeOpts, kvlite.WithOrdered())
	}
	store, err := kvlite.NewStore(db, storeOpts...)
	if err != nil {
		db.Close()
		return nil, nil, WrapExitError(ExitCommandError, "bind store", err)
	}
	return db, store, nil
}
