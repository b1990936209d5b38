package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ministryofjustice/operations-engineering-reports/internal/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Ingest a batch of reports from a local JSON file",
	Long:  "Reads a report batch in any shape the HTTP endpoint accepts and upserts every entry. Use - to read standard input.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			body []byte
			err  error
		)
		if args[0] == "-" {
			body, err = io.ReadAll(cmd.InOrStdin())
		} else {
			body, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read batch: %w", err)
		}

		db, reports, err := openReportStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		decrypter, err := newDecrypter(cfg)
		if err != nil {
			return err
		}

		res, err := service.NewIngestService(reports, decrypter).IngestBody(ctx, body)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if res.Rejected > 0 {
			return fmt.Errorf("%d of %d entries rejected", res.Rejected, res.Accepted+res.Rejected)
		}
		return nil
	},
}
