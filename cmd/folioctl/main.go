// Command folioctl values mutual fund folios from the command line, either from an
// exported file or straight from the upstream folio API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ndewijer/mf-folio-backend/internal/api/handlers"
	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/holdingsfile"
	"github.com/ndewijer/mf-folio-backend/internal/logging"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	"github.com/ndewijer/mf-folio-backend/internal/validation"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
)

type options struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "folioctl",
		Short:         "Mutual fund folio valuation tool",
		Long:          `Computes totals, profit/loss and XIRR for mutual fund folios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", os.Getenv("FOLIO_API_URL"), "Base URL of the folio API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(summarizeCmd(opts), fetchCmd(opts), profileCmd(opts))
	return rootCmd
}

func summarizeCmd(opts *options) *cobra.Command {
	var (
		file       string
		today      string
		inputOrder bool
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Value an exported folio file (JSON or CSV)",
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := validation.ParseDate(today)
			if err != nil {
				return err
			}

			records, err := holdingsfile.Load(file)
			if err != nil {
				return err
			}

			var aggOpts []valuation.Option
			if inputOrder {
				aggOpts = append(aggOpts, valuation.WithInputOrder())
			}

			svc := service.NewPortfolioService(nil, valuation.New(aggOpts...), nil, opts.logger(cmd))
			return printJSON(cmd.OutOrStdout(), handlers.NewPortfolioSummaryResponse(svc.SummarizeRecords(records, asOf)))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to holdings.json or holdings.csv")
	cmd.Flags().StringVar(&today, "today", "", "Valuation day as YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&inputOrder, "input-order", false, "Keep cash flows in file order instead of sorting by date")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func fetchCmd(opts *options) *cobra.Command {
	var (
		userID string
		today  string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a user's folio from the API and value it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateUserID(userID); err != nil {
				return err
			}
			asOf, err := validation.ParseDate(today)
			if err != nil {
				return err
			}

			client, err := opts.client(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			svc := service.NewPortfolioService(client, nil, nil, opts.logger(cmd))
			summary, err := svc.GetSummary(ctx, userID, asOf)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handlers.NewPortfolioSummaryResponse(summary))
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Upstream user id")
	cmd.Flags().StringVar(&today, "today", "", "Valuation day as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func profileCmd(opts *options) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print a user's profile from the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateUserID(userID); err != nil {
				return err
			}

			client, err := opts.client(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			profile, err := client.FetchProfile(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Upstream user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func (o *options) logger(cmd *cobra.Command) zerolog.Logger {
	return logging.NewWithWriter(logging.Config{Level: o.logLevel, Format: "console"}, cmd.ErrOrStderr())
}

func (o *options) client(cmd *cobra.Command) (*folio.Client, error) {
	if o.apiURL == "" {
		return nil, fmt.Errorf("--api-url or FOLIO_API_URL is required")
	}
	return folio.NewClient(
		folio.Config{BaseURL: o.apiURL, Timeout: o.timeout},
		folio.WithLogger(o.logger(cmd)),
	), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
