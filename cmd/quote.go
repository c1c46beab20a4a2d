package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Leganyst/booking-engine/internal/checkout"
)

func newQuoteCmd() *cobra.Command {
	var req checkout.BookingRequest

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking without holding the slot",
		Example: `  booking-engine quote --venue v1 --sport Cricket --date 2025-06-02 --start 09:00 --end 11:00
  booking-engine quote --venue v1 --coach c1 --sport Cricket --date 2025-06-02 --start 09:00 --end 11:00 --promo SAVE10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.orch.Quote(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.VenueID, "venue", "", "venue id")
	f.StringVar(&req.CoachID, "coach", "", "coach id")
	f.StringVar(&req.Sport, "sport", "", "sport name")
	f.StringVar(&req.Date, "date", "", "date, YYYY-MM-DD")
	f.StringVar(&req.StartTime, "start", "", "start time, HH:MM")
	f.StringVar(&req.EndTime, "end", "", "end time, HH:MM")
	f.StringVar(&req.PromoCode, "promo", "", "promo code")
	_ = cmd.MarkFlagRequired("sport")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
