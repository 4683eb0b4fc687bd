package cmd

import (
	"time"

	"github.com/AzielCF/telebridge/core/config"
	"github.com/AzielCF/telebridge/pkg/mediastore"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sweepMaxAge time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove media files left behind by interrupted relay runs",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "only remove files older than this | example: --max-age=30m (default: ARTIFACT_MAX_AGE_MINUTES)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	maxAge := sweepMaxAge
	if maxAge <= 0 {
		maxAge = time.Duration(config.Global.Relay.ArtifactMaxAgeMin) * time.Minute
	}

	store, err := mediastore.New(config.Global.Paths.Temp)
	if err != nil {
		return err
	}
	removed, err := store.Sweep(maxAge)
	if err != nil {
		return err
	}

	stats := store.Stats()
	logrus.Infof("[MEDIASTORE] removed %d file(s) older than %s from %s, %s left (%s)",
		removed, maxAge, stats.Dir, humanize.Comma(int64(stats.FilesOnDisk)), stats.BytesOnDisk)
	return nil
}
