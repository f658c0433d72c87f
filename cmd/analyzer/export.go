package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"telegram-chat-analytics/internal/adapters/exporter"
	"telegram-chat-analytics/internal/domain"
	"telegram-chat-analytics/internal/ports"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the chat report as json, yaml or xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := exporter.NewExporter(format)
			if err != nil {
				return err
			}

			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			report, err := a.analyzer.Report(a.store)
			if err != nil {
				return err
			}

			if out == "" {
				if exp.Extension() == "xlsx" {
					return fmt.Errorf("--out is required for xlsx format")
				}
				if err := exp.Export(cmd.OutOrStdout(), report); err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}
				return nil
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := exportAndClose(f, exp, report); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml, xlsx, text")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")

	return cmd
}

// exportAndClose пишет отчет и закрывает w. Ошибка закрытия не теряется:
// для файла она означает, что данные не дошли до диска.
func exportAndClose(w io.WriteCloser, exp ports.Exporter, report *domain.Report) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	if err := exp.Export(w, report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	return nil
}
