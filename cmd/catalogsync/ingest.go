package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/service/ingestion"
)

type ingestFlags struct {
	tag               string
	environment       string
	dryRun            bool
	strictAudioUpload bool
	audioDir          string
}

func newIngestCmd(g *globalFlags) *cobra.Command {
	var f ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest <definition-file>",
		Short: "Ingest a content definition file",
		Long: `Ingest upserts every entity of a JSON or YAML definition file inside one
transaction and records it under the given batch tag. Local audio files are
uploaded to object storage when it is configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.tag) == "" {
				return errTagRequired
			}

			def, err := contentdef.ParseFile(args[0])
			if err != nil {
				return err
			}

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.IngestionService().Run(cmd.Context(), ingestion.RunInput{
				Definition:        def,
				Tag:               f.tag,
				Environment:       f.environment,
				DryRun:            f.dryRun,
				StrictAudioUpload: f.strictAudioUpload,
				AudioDir:          f.audioDir,
			})
			if err != nil {
				return err
			}

			printIngestResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.tag, "tag", "", "Batch tag identifying this ingestion (required)")
	cmd.Flags().StringVar(&f.environment, "environment", "", "Target environment (default: configured ingestion environment)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Run everything and roll the transaction back")
	cmd.Flags().BoolVar(&f.strictAudioUpload, "strict-audio-upload", false, "Fail instead of falling back to file:// URLs for local audio")
	cmd.Flags().StringVar(&f.audioDir, "audio-dir", "", "Directory holding local audio files (default: configured audio directory)")
	return cmd
}

func printIngestResult(w io.Writer, res *ingestion.Result) {
	mode := "committed"
	if res.DryRun {
		mode = "dry run, rolled back"
	}
	fmt.Fprintf(w, "Batch %s (%s) %s [%s]\n", res.Tag, res.Environment, res.BatchID, mode)

	rows := []struct {
		name string
		c    ingestion.Counters
	}{
		{"topics", res.Topics},
		{"scholars", res.Scholars},
		{"collections", res.Collections},
		{"series", res.Series},
		{"lectures", res.Lectures},
		{"audio assets", res.AudioAssets},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-13s %4d created  %4d updated\n", r.name, r.c.Created, r.c.Updated)
	}
	fmt.Fprintf(w, "  topic links   %4d\n", res.TopicLinks)
	fmt.Fprintf(w, "  uploaded      %4d\n", res.Uploaded)
	fmt.Fprintf(w, "  local files   %4d\n", res.LocalFallbacks)
	fmt.Fprintf(w, "  demoted       %4d\n", res.Demoted)
	fmt.Fprintf(w, "Done in %s\n", res.Duration.Round(time.Millisecond))
}
