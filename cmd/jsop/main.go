// Command jsop is the bulk import/export CLI for jsop databases:
//
//	jsop init   <db-path> [<json-path>]
//	jsop export <db-path> [<json-path>]
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hagai-helman/jsop"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// fs is the afero filesystem used for the <json-path> argument, so the
// CLI's file handling can be driven against an in-memory filesystem in
// tests without touching disk. The database file itself is always a
// real file: jsop's default DBM (bbolt) memory-maps it directly.
var fs afero.Fs = afero.NewOsFs()

func main() {
	root := &cobra.Command{
		Use:           "jsop",
		Short:         "bulk import/export for jsop databases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(initCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <db-path> [<json-path>]",
		Short: "create a fresh jsop database",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := args[0]

			var value any = jsop.Object{}
			if len(args) == 2 {
				data, err := afero.ReadFile(fs, args[1])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[1], err)
				}
				value, err = jsop.ParseJSON(data)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", args[1], err)
				}
			}

			return jsop.Init(dbPath, value)
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <db-path> [<json-path>]",
		Short: "export a jsop database as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := args[0]

			data, err := jsop.Export(dbPath)
			if err != nil {
				return err
			}

			if len(args) == 2 {
				encoded, err := json.Marshal(data)
				if err != nil {
					return err
				}
				return afero.WriteFile(fs, args[1], encoded, 0o644)
			}

			encoded, err := json.MarshalIndent(data, "", " ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return err
		},
	}
}
