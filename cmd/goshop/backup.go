package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the full item list",
	}

	var out, exportPass string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a backup string (or an encrypted backup with --passphrase)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if exportPass != "" {
				sealed, err := a.svc.SealBackup(exportPass)
				if err != nil {
					return err
				}
				data = sealed
			} else {
				s, err := a.svc.ExportBackup()
				if err != nil {
					return err
				}
				data = []byte(s + "\n")
			}
			if err := writeOutput(cmd, out, data); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Backup written to %s\n", out)
			}
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	export.Flags().StringVar(&exportPass, "passphrase", "", "encrypt the backup with this passphrase")

	var importPass string
	var yes bool
	restore := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Replace every item with the contents of a backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			var n int
			if importPass != "" {
				n, err = a.svc.OpenSealedBackup(data, importPass)
			} else {
				n, err = a.svc.ImportBackup(string(data))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup restored: %d items\n", n)
			return nil
		},
	}
	restore.Flags().StringVar(&importPass, "passphrase", "", "decrypt an encrypted backup")
	restore.Flags().BoolVar(&yes, "yes", false, "confirm replacing every existing item")

	cmd.AddCommand(export, restore)
	return cmd
}
