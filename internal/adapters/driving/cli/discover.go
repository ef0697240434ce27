package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var (
	nearbyFlags  dispatchFlags
	nearbyLat    float64
	nearbyLon    float64
	nearbyRadius float64

	siteFlags    dispatchFlags
	siteLocation string
	siteLat      float64
	siteLon      float64

	empireFlags  dispatchFlags
	empirePeriod string

	periodFlags   dispatchFlags
	periodFrom    int
	periodTo      int
	periodCulture string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find content near a point",
	Long: `Finds content located within a radius of a point.

Coordinates are given as flags so negative values parse cleanly:
  arkeo nearby --lat -13.1631 --lon -72.5450 --radius 5`,
	Args: cobra.NoArgs,
	RunE: runNearby,
}

var siteCmd = &cobra.Command{
	Use:   "site [name]",
	Short: "Find content about an archaeological site",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSite,
}

var empireCmd = &cobra.Command{
	Use:   "empire [name]",
	Short: "Find content about an empire or civilisation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEmpire,
}

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Find content dated within a year range",
	Long: `Finds content dated between two years. Negative years are BCE:
  arkeo period --from -1700 --to -1450 --culture Minoan`,
	Args: cobra.NoArgs,
	RunE: runPeriod,
}

func init() {
	nearbyFlags.bind(nearbyCmd)
	nearbyCmd.Flags().Float64Var(&nearbyLat, "lat", 0, "latitude in decimal degrees")
	nearbyCmd.Flags().Float64Var(&nearbyLon, "lon", 0, "longitude in decimal degrees")
	nearbyCmd.Flags().Float64VarP(&nearbyRadius, "radius", "r", 0, "radius in kilometres (default 10)")
	_ = nearbyCmd.MarkFlagRequired("lat")
	_ = nearbyCmd.MarkFlagRequired("lon")

	siteFlags.bind(siteCmd)
	siteCmd.Flags().StringVar(&siteLocation, "location", "", "region or country to disambiguate the site")
	siteCmd.Flags().Float64Var(&siteLat, "lat", 0, "site latitude when known")
	siteCmd.Flags().Float64Var(&siteLon, "lon", 0, "site longitude when known")

	empireFlags.bind(empireCmd)
	empireCmd.Flags().StringVar(&empirePeriod, "period", "", "sub-period, e.g. Flavian")

	periodFlags.bind(periodCmd)
	periodCmd.Flags().IntVar(&periodFrom, "from", 0, "first year; negative for BCE")
	periodCmd.Flags().IntVar(&periodTo, "to", 0, "last year; negative for BCE")
	periodCmd.Flags().StringVar(&periodCulture, "culture", "", "culture filter")
	_ = periodCmd.MarkFlagRequired("from")
	_ = periodCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(nearbyCmd, siteCmd, empireCmd, periodCmd)
}

func runNearby(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}
	d, err := nearbyFlags.dispatch()
	if err != nil {
		return err
	}

	res, err := registry.GetByLocationAll(cmd.Context(), domain.LocationRequest{
		Dispatch:       d,
		Lat:            nearbyLat,
		Lon:            nearbyLon,
		RadiusKM:       nearbyRadius,
		LimitPerSource: nearbyFlags.limit,
	})
	if err != nil {
		return fmt.Errorf("location search failed: %w", err)
	}
	return outputResult(cmd, res, nearbyFlags.json)
}

func runSite(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}
	d, err := siteFlags.dispatch()
	if err != nil {
		return err
	}

	req := domain.SiteRequest{
		Dispatch:       d,
		SiteName:       strings.Join(args, " "),
		Location:       siteLocation,
		LimitPerSource: siteFlags.limit,
	}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		req.Lat = domain.FloatPtr(siteLat)
		req.Lon = domain.FloatPtr(siteLon)
	}

	res, err := registry.GetForSite(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("site search failed: %w", err)
	}
	return outputResult(cmd, res, siteFlags.json)
}

func runEmpire(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}
	d, err := empireFlags.dispatch()
	if err != nil {
		return err
	}

	res, err := registry.GetForEmpire(cmd.Context(), domain.EmpireRequest{
		Dispatch:       d,
		EmpireName:     strings.Join(args, " "),
		PeriodName:     empirePeriod,
		LimitPerSource: empireFlags.limit,
	})
	if err != nil {
		return fmt.Errorf("empire search failed: %w", err)
	}
	return outputResult(cmd, res, empireFlags.json)
}

func runPeriod(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}
	d, err := periodFlags.dispatch()
	if err != nil {
		return err
	}

	res, err := registry.GetByPeriodAll(cmd.Context(), domain.PeriodRequest{
		Dispatch:       d,
		StartYear:      periodFrom,
		EndYear:        periodTo,
		Culture:        periodCulture,
		LimitPerSource: periodFlags.limit,
	})
	if err != nil {
		return fmt.Errorf("period search failed: %w", err)
	}
	return outputResult(cmd, res, periodFlags.json)
}
