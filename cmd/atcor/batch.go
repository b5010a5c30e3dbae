package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forest-guardian/atcor/internal/delivery"
	"github.com/forest-guardian/atcor/internal/properties"
)

func newBatchCmd() *cobra.Command {
	var cfg delivery.Config
	cmd := &cobra.Command{
		Use:   "batch [tile...]",
		Short: "Correct every tile of the input directory",
		Long: "Correct the given tiles, or every Landsat and Sentinel-2 GeoTIFF found in the\n" +
			"input directory when none is given. Failing tiles do not stop the batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tiles := args
			if len(tiles) == 0 {
				var err error
				if tiles, err = delivery.DiscoverTiles(cfg.InputDir); err != nil {
					return err
				}
			}
			if len(tiles) == 0 {
				color.Yellow("No tiles found in %s", cfg.InputDir)
				return nil
			}

			svc, err := delivery.New(cfg)
			if err != nil {
				return err
			}
			res, err := svc.CorrectBatch(cmd.Context(), tiles)
			for _, r := range res.Succeeded {
				color.Green("%s -> %s", r.TileID, r.Output)
			}
			for _, f := range res.Failed {
				color.Red("%s", f)
			}
			return err
		},
	}
	addCommonFlags(cmd, &cfg)
	cmd.Flags().IntVar(&cfg.TileWorkers, "tile-workers", properties.TileWorkers(), "tiles corrected at once")
	cmd.Flags().BoolVar(&cfg.Notify, "notify", true, "send a Discord notification when done")
	cmd.Flags().BoolVar(&cfg.Quiet, "quiet", false, "hide the progress bar")
	return cmd
}
