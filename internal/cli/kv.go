package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvlite/kvlite"
)

// parseValue turns a command-line argument into a storable value.
// Plain strings by default; JSON documents with --json.
func parseValue(opts *RootOptions, arg string) (any, error) {
	if !opts.JSONVal {
		return arg, nil
	}
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return nil, WrapExitError(ExitCommandError, "parse value", err)
	}
	return v, nil
}

// renderValue turns a decoded value back into display text.
func renderValue(opts *RootOptions, v any) (string, error) {
	if !opts.JSONVal {
		return fmt.Sprintf("%v", v), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "render value", err)
	}
	return string(data), nil
}

// NewGetCommand returns the "get" subcommand.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	var defVal string
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			var v any
			if cmd.Flags().Changed("default") {
				v, err = store.GetDefault(context.Background(), kvlite.Key(args[0]), defVal)
			} else {
				v, err = store.Get(context.Background(), kvlite.Key(args[0]))
			}
			if err != nil {
				return f.Failure(ExitFailure, err)
			}
			text, err := renderValue(opts, v)
			if err != nil {
				return err
			}
			return f.Success(text)
		},
	}
	cmd.Flags().StringVar(&defVal, "default", "", "value to print when the key is absent")
	return cmd
}

// NewSetCommand returns the "set" subcommand.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Insert or replace the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := parseValue(opts, args[1])
			if err != nil {
				return err
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if err := store.Set(context.Background(), kvlite.Key(args[0]), v); err != nil {
				return f.Failure(ExitFailure, err)
			}
			return f.Success("ok")
		},
	}
}

// NewDelCommand returns the "del" subcommand.
// With several keys the deletion runs as one membership predicate.
func NewDelCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del [key]...",
		Short: "Delete one or more keys (absent keys are ignored)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			var e kvlite.Expr
			if len(args) == 1 {
				e = kvlite.Key(args[0])
			} else {
				e = kvlite.In(args)
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if err := store.Delete(context.Background(), e); err != nil {
				return f.Failure(ExitFailure, err)
			}
			return f.Success("ok")
		},
	}
}

// NewHasCommand returns the "has" subcommand.
func NewHasCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "has [key]",
		Short: "Print whether a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			ok, err := store.Contains(context.Background(), args[0])
			if err != nil {
				return f.Failure(ExitFailure, err)
			}
			return f.Success(ok)
		},
	}
}

// NewPopCommand returns the "pop" subcommand.
func NewPopCommand(opts *RootOptions) *cobra.Command {
	var defVal string
	cmd := &cobra.Command{
		Use:   "pop [key]",
		Short: "Print and remove the value stored under a key, atomically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			var v any
			if cmd.Flags().Changed("default") {
				v, err = store.PopDefault(context.Background(), kvlite.Key(args[0]), defVal)
			} else {
				v, err = store.Pop(context.Background(), kvlite.Key(args[0]))
			}
			if err != nil {
				return f.Failure(ExitFailure, err)
			}
			text, err := renderValue(opts, v)
			if err != nil {
				return err
			}
			return f.Success(text)
		},
	}
	cmd.Flags().StringVar(&defVal, "default", "", "value to print when the key is absent")
	return cmd
}

// NewKeysCommand returns the "keys" subcommand.
func NewKeysCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			keys := []string{}
			for k, err := range store.Keys(context.Background()) {
				if err != nil {
					return f.Failure(ExitFailure, err)
				}
				keys = append(keys, k)
			}
			if opts.Format == "json" {
				return f.Success(keys)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

// itemOut is the JSON shape for one row in "items" output.
type itemOut struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// NewItemsCommand returns the "items" subcommand.
func NewItemsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List every (key, value) pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			items := []itemOut{}
			for item, err := range store.Items(context.Background()) {
				if err != nil {
					return f.Failure(ExitFailure, err)
				}
				items = append(items, itemOut{Key: item.Key, Value: item.Value})
			}
			if opts.Format == "json" {
				return f.Success(items)
			}
			for _, item := range items {
				text, err := renderValue(opts, item.Value)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.Key, text)
			}
			return nil
		},
	}
}

// NewLenCommand returns the "len" subcommand.
func NewLenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "len",
		Short: "Print the number of stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			n, err := store.Len(context.Background())
			if err != nil {
				return f.Failure(ExitFailure, err)
			}
			return f.Success(n)
		},
	}
}

// NewClearCommand returns the "clear" subcommand.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if err := store.Clear(context.Background()); err != nil {
				return f.Failure(ExitFailure, err)
			}
			return f.Success("ok")
		},
	}
}
