package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/catalog-sync/internal/service/removal"
)

var errTagRequired = errors.New("--tag is required")

type removeFlags struct {
	tag         string
	environment string
	dryRun      bool
	skipStorage bool
}

func newRemoveCmd(g *globalFlags) *cobra.Command {
	var f removeFlags

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove everything an ingestion batch created",
		Long: `Remove deletes the rows owned by an ingestion batch, the audio objects
stored under its prefix and topics no longer referenced by anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(f.tag) == "" {
				return errTagRequired
			}

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.RemovalService().Remove(cmd.Context(), removal.RemoveInput{
				Tag:         f.tag,
				Environment: f.environment,
				DryRun:      f.dryRun,
				SkipStorage: f.skipStorage,
			})
			if err != nil {
				return err
			}

			printRemoveResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.tag, "tag", "", "Batch tag to remove (required)")
	cmd.Flags().StringVar(&f.environment, "environment", "", "Environment of the batch (default: configured ingestion environment)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report what would be deleted without deleting anything")
	cmd.Flags().BoolVar(&f.skipStorage, "skip-r2", false, "Leave object storage untouched")
	return cmd
}

func printRemoveResult(w io.Writer, res *removal.Result) {
	mode := "deleted"
	if res.DryRun {
		mode = "dry run, nothing deleted"
	}
	fmt.Fprintf(w, "Batch %s (%s) %s [%s]\n", res.Tag, res.Environment, res.BatchID, mode)

	rows := []struct {
		name           string
		found, deleted int
	}{
		{"scholars", res.Found.Scholars, res.Deleted.Scholars},
		{"collections", res.Found.Collections, res.Deleted.Collections},
		{"series", res.Found.Series, res.Deleted.Series},
		{"lectures", res.Found.Lectures, res.Deleted.Lectures},
		{"audio assets", res.Found.AudioAssets, res.Deleted.AudioAssets},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-13s %4d found  %4d deleted\n", r.name, r.found, r.deleted)
	}
	fmt.Fprintf(w, "  topics        %4d candidates  %4d deleted\n", res.CandidateTopics, res.TopicsDeleted)
	if res.SkipStorage {
		fmt.Fprintln(w, "  storage       skipped")
	} else {
		fmt.Fprintf(w, "  storage       %4d keys  %4d deleted\n", len(res.StorageKeys), res.ObjectsDeleted)
	}
	fmt.Fprintf(w, "Done in %s\n", res.Duration.Round(time.Millisecond))
}
