package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/goshop/internal/csvimport"
)

func newCSVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Import items from CSV",
	}

	imp := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Add items from a CSV file with name and category columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}
			result, err := a.svc.ImportCSV(bytes.NewReader(data))
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintln(w, result)
			})
		},
	}

	var out string
	template := &cobra.Command{
		Use:         "template",
		Short:       "Write the example CSV template",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipApp: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeOutput(cmd, out, []byte(csvimport.Template())); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Template written to %s\n", out)
			}
			return nil
		},
	}
	template.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout, conventionally "+csvimport.TemplateFilename+")")

	cmd.AddCommand(imp, template)
	return cmd
}
