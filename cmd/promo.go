package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
)

func newPromoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Manage promo codes",
	}
	cmd.AddCommand(newPromoSetCmd(), newPromoListCmd())
	return cmd
}

func newPromoSetCmd() *cobra.Command {
	var (
		kind        string
		percent     float64
		amount      float64
		tiers       []string
		minSubtotal float64
		validFrom   string
		validUntil  string
		disabled    bool
	)

	cmd := &cobra.Command{
		Use:   "set CODE",
		Short: "Create or replace a promo code",
		Example: `  booking-engine promo set SAVE10 --kind percentage --percent 0.10
  booking-engine promo set FLAT200 --kind flat --amount 200 --min-subtotal 1000
  booking-engine promo set BULK --kind tiered --tier 1000:0.05 --tier 3000:0.10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &model.PromoCode{
				Code:        pricing.NormalizeCode(args[0]),
				Kind:        model.PromoKind(kind),
				Percent:     percent,
				Amount:      amount,
				MinSubtotal: minSubtotal,
				Disabled:    disabled,
			}
			switch p.Kind {
			case model.PromoPercentage, model.PromoFlat:
			case model.PromoTiered:
				parsed, err := parseTiers(tiers)
				if err != nil {
					return err
				}
				p.Tiers = parsed
			default:
				return fmt.Errorf("unknown promo kind %q", kind)
			}
			var err error
			if p.ValidFrom, err = parseOptionalTime(validFrom); err != nil {
				return fmt.Errorf("--valid-from: %w", err)
			}
			if p.ValidUntil, err = parseOptionalTime(validUntil); err != nil {
				return fmt.Errorf("--valid-until: %w", err)
			}

			a, err := openApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.store.Promos().Upsert(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "promo %s saved\n", p.Code)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(model.PromoPercentage), "percentage | flat | tiered")
	f.Float64Var(&percent, "percent", 0, "fraction for percentage codes (0.10 = 10%)")
	f.Float64Var(&amount, "amount", 0, "amount for flat codes")
	f.StringArrayVar(&tiers, "tier", nil, "tier for tiered codes, MIN_SUBTOTAL:FRACTION (repeatable)")
	f.Float64Var(&minSubtotal, "min-subtotal", 0, "minimum subtotal")
	f.StringVar(&validFrom, "valid-from", "", "RFC3339 start of validity")
	f.StringVar(&validUntil, "valid-until", "", "RFC3339 end of validity")
	f.BoolVar(&disabled, "disabled", false, "store the code disabled")
	return cmd
}

func newPromoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List promo codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			promos, err := a.store.Promos().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tKIND\tVALUE\tMIN SUBTOTAL\tDISABLED")
			for _, p := range promos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%t\n", p.Code, p.Kind, promoValue(p), p.MinSubtotal, p.Disabled)
			}
			return w.Flush()
		},
	}
}

func promoValue(p model.PromoCode) string {
	switch p.Kind {
	case model.PromoPercentage:
		return strconv.FormatFloat(p.Percent*100, 'f', -1, 64) + "%"
	case model.PromoFlat:
		return strconv.FormatFloat(p.Amount, 'f', 2, 64)
	default:
		parts := make([]string, 0, len(p.Tiers))
		for _, t := range p.Tiers {
			parts = append(parts, fmt.Sprintf("%g:%g", t.MinSubtotal, t.Fraction))
		}
		return strings.Join(parts, ",")
	}
}

func parseTiers(raw []string) (datatypes.JSONSlice[model.PromoTier], error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("tiered promo needs at least one --tier")
	}
	out := make(datatypes.JSONSlice[model.PromoTier], 0, len(raw))
	for _, r := range raw {
		minStr, fracStr, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("tier %q: want MIN_SUBTOTAL:FRACTION", r)
		}
		minSubtotal, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", r, err)
		}
		fraction, err := strconv.ParseFloat(fracStr, 64)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", r, err)
		}
		out = append(out, model.PromoTier{MinSubtotal: minSubtotal, Fraction: fraction})
	}
	return out, nil
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
