package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/railzwaylabs/parkwise/internal/config"
	"github.com/railzwaylabs/parkwise/internal/fee"
	feedomain "github.com/railzwaylabs/parkwise/internal/fee/domain"
	"github.com/railzwaylabs/parkwise/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type quoteFlags struct {
	schedule      string
	start         string
	end           string
	timeZone      string
	eligibilities []string
}

func newQuoteCmd(path func() config.Path) *cobra.Command {
	var flags quoteFlags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an interval against a schedule file and print the quote as JSON",
		Example: `  parkwise quote --schedule lot.yaml --start 2026-03-01T09:00:00+09:00 \
    --end 2026-03-01T11:30:00+09:00 --eligibility compact`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc feedomain.Service
			app := fx.New(
				fx.NopLogger,
				fx.Supply(path()),
				config.Module,
				observability.Module,
				fee.Module,
				fx.Populate(&svc),
			)
			if err := app.Err(); err != nil {
				return err
			}
			return runQuote(cmd.Context(), cmd.OutOrStdout(), svc, flags)
		},
	}

	cmd.Flags().StringVar(&flags.schedule, "schedule", "", "fee schedule file (yaml, json or toml)")
	cmd.Flags().StringVar(&flags.start, "start", "", "session start, RFC 3339")
	cmd.Flags().StringVar(&flags.end, "end", "", "session end, RFC 3339")
	cmd.Flags().StringVar(&flags.timeZone, "tz", "", "IANA time zone used for calendar days (default: the offsets given)")
	cmd.Flags().StringSliceVar(&flags.eligibilities, "eligibility", nil, "active eligibility flag, repeatable")
	_ = cmd.MarkFlagRequired("schedule")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runQuote(ctx context.Context, out io.Writer, svc feedomain.Service, flags quoteFlags) error {
	schedule, err := loadSchedule(flags.schedule)
	if err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, flags.start)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, flags.end)
	if err != nil {
		return fmt.Errorf("parse --end: %w", err)
	}

	req := feedomain.QuoteRequest{
		Start:    start,
		End:      end,
		Schedule: schedule,
	}
	for _, flag := range flags.eligibilities {
		req.Eligibilities = append(req.Eligibilities, feedomain.Eligibility(flag))
	}
	if flags.timeZone != "" {
		loc, err := time.LoadLocation(flags.timeZone)
		if err != nil {
			return fmt.Errorf("parse --tz: %w", err)
		}
		req.Location = loc
	}

	if ctx == nil {
		ctx = context.Background()
	}
	quote, err := svc.Quote(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(quote)
}

// loadSchedule reads a schedule file in any format viper understands.
func loadSchedule(file string) (feedomain.FeeSchedule, error) {
	if file == "" {
		return feedomain.FeeSchedule{}, errors.New("--schedule is required")
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return feedomain.FeeSchedule{}, fmt.Errorf("read schedule: %w", err)
	}

	var schedule feedomain.FeeSchedule
	if err := v.Unmarshal(&schedule); err != nil {
		return feedomain.FeeSchedule{}, fmt.Errorf("decode schedule: %w", err)
	}
	return schedule, nil
}
