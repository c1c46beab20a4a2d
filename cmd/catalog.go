package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/model"
)

// Каталог в проде ведёт внешний сервис; эти команды нужны для локального
// запуска и демо.
func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Seed venues and coaches",
	}
	cmd.AddCommand(newCatalogVenueCmd(), newCatalogCoachCmd())
	return cmd
}

type rateFlags struct {
	name   string
	hourly float64
	sports map[string]string
}

func (r *rateFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&r.name, "name", "", "display name")
	f.Float64Var(&r.hourly, "hourly-rate", 0, "base hourly rate")
	f.StringToStringVar(&r.sports, "sport-rate", nil, "per-sport hourly rate, SPORT=RATE (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("hourly-rate")
}

func (r *rateFlags) sportPricing() (datatypes.JSONMap, error) {
	if len(r.sports) == 0 {
		return nil, nil
	}
	out := make(datatypes.JSONMap, len(r.sports))
	for sport, raw := range r.sports {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--sport-rate %s: %w", sport, err)
		}
		out[sport] = rate
	}
	return out, nil
}

func newCatalogVenueCmd() *cobra.Command {
	var rf rateFlags
	cmd := &cobra.Command{
		Use:     "venue ID",
		Short:   "Create or update a venue",
		Example: "  booking-engine catalog venue v1 --name Arena --hourly-rate 1000 --sport-rate Cricket=1200",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sports, err := rf.sportPricing()
			if err != nil {
				return err
			}
			a, err := openApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			v := &model.Venue{ID: args[0], Name: rf.name, HourlyRate: rf.hourly, SportPricing: sports}
			if err := a.store.Catalog().UpsertVenue(cmd.Context(), v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "venue %s saved\n", v.ID)
			return nil
		},
	}
	rf.bind(cmd)
	return cmd
}

func newCatalogCoachCmd() *cobra.Command {
	var rf rateFlags
	cmd := &cobra.Command{
		Use:     "coach ID",
		Short:   "Create or update a coach",
		Example: "  booking-engine catalog coach c1 --name \"Coach Anna\" --hourly-rate 500",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sports, err := rf.sportPricing()
			if err != nil {
				return err
			}
			a, err := openApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			c := &model.Coach{ID: args[0], DisplayName: rf.name, HourlyRate: rf.hourly, SportPricing: sports}
			if err := a.store.Catalog().UpsertCoach(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coach %s saved\n", c.ID)
			return nil
		},
	}
	rf.bind(cmd)
	return cmd
}
