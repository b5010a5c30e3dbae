package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forest-guardian/atcor/internal/delivery"
	"github.com/forest-guardian/atcor/internal/properties"
)

// addCommonFlags binds the flags shared by correct and batch. Defaults
// come from the environment.
func addCommonFlags(cmd *cobra.Command, cfg *delivery.Config) {
	f := cmd.Flags()
	f.StringVar(&cfg.InputDir, "input", properties.InputDir(), "directory holding <tile>.tif and <tile>.zip")
	f.StringVar(&cfg.ExtractDir, "extract", properties.ExtractDir(), "directory metadata archives are extracted to")
	f.StringVar(&cfg.OutputDir, "output", properties.OutputDir(), "directory products are written to")
	f.StringVar(&cfg.CacheDir, "cache", properties.CacheDir(), "directory remembering extracted archives (empty disables)")
	f.StringVar(&cfg.Format, "format", "netcdf", "output format: netcdf or gtiff")
	f.IntVar(&cfg.Workers, "workers", properties.Workers(), "bands corrected at once (0 = one per CPU)")
	f.StringVar(&cfg.DarkObject, "dark-object", properties.DarkObject(), "dark object policy: min or p<N>")
	f.BoolVar(&cfg.Quicklook, "quicklook", false, "write a PNG quicklook")
	f.StringVar(&cfg.QuicklookBand, "quicklook-band", "", "band shown in the quicklook")
	f.BoolVar(&cfg.Footprint, "footprint", false, "write the footprint as GeoJSON")
	f.BoolVar(&cfg.Report, "report", false, "write per band statistics as CSV")
}

func newCorrectCmd() *cobra.Command {
	var cfg delivery.Config
	cmd := &cobra.Command{
		Use:   "correct <tile>",
		Short: "Correct a single tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := delivery.New(cfg)
			if err != nil {
				return err
			}
			res, err := svc.CorrectTile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			color.Green("Tile %s corrected: %d bands in %s", res.TileID, res.Bands, res.Elapsed.Round(time.Millisecond))
			color.Green("Product: %s", res.Output)
			for _, path := range res.Sidecars {
				color.Green("Sidecar: %s", path)
			}
			return nil
		},
	}
	addCommonFlags(cmd, &cfg)
	return cmd
}
