package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vibesrm/internal/authz"
	"vibesrm/internal/config"
	"vibesrm/pkg/dto"
	"vibesrm/pkg/vibeclient"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type globalOpts struct {
	server  string
	token   string
	timeout time.Duration
}

func (g *globalOpts) client() *vibeclient.Client {
	return vibeclient.New(g.server, vibeclient.WithToken(g.token))
}

func (g *globalOpts) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "vibectl",
		Short:         "Command line client for the VibeSRM check-in service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("VIBESRM_URL", "http://localhost:8085"), "service base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("VIBESRM_TOKEN"), "bearer token")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		newTokenCmd(),
		newCheckInCmd(opts),
		newCheckOutCmd(opts),
		newActiveCmd(opts),
		newHistoryCmd(opts),
		newStatsCmd(opts),
		newGhostsCmd(opts),
		newEncourageCmd(opts),
		newLocationsCmd(opts),
		newLocationCmd(opts),
	)
	return root
}

func newTokenCmd() *cobra.Command {
	var secret, issuer, userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("--user must be a uuid: %w", err)
				}
				id = parsed
			}
			signer, err := authz.NewSigner(secret, issuer)
			if err != nil {
				return err
			}
			tok, err := signer.Sign(id, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"userId": id.String(), "token": tok})
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", config.DevJWTSecret), "HMAC signing secret")
	cmd.Flags().StringVar(&issuer, "issuer", envOr("JWT_ISSUER", "vibesrm-auth"), "token issuer")
	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func newCheckInCmd(opts *globalOpts) *cobra.Command {
	var (
		locationID, subject, mode string
		lat, lon                  float64
		planned                   int
	)
	cmd := &cobra.Command{
		Use:   "checkin --location <id> --lat <lat> --lon <lon>",
		Short: "Start a study session at a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(locationID) == "" {
				return fmt.Errorf("--location is required")
			}
			req := dto.CheckInRequest{
				LocationID: locationID,
				Latitude:   &lat,
				Longitude:  &lon,
				Mode:       mode,
			}
			if subject != "" {
				req.Subject = &subject
			}
			if cmd.Flags().Changed("planned") {
				req.PlannedDuration = &planned
			}
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().CheckIn(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&locationID, "location", "", "location id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "current latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "current longitude")
	cmd.Flags().StringVar(&subject, "subject", "", "what you are studying")
	cmd.Flags().StringVar(&mode, "mode", "solo", "solo|group|ghost")
	cmd.Flags().IntVar(&planned, "planned", 120, "planned duration in minutes")
	return cmd
}

func newCheckOutCmd(opts *globalOpts) *cobra.Command {
	var noise, temperature, crowdedness, rating int
	var outlets bool
	var feedback string

	cmd := &cobra.Command{
		Use:   "checkout <session-id>",
		Short: "End the active session and collect rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CheckOutRequest{}
			flags := cmd.Flags()
			if flags.Changed("noise") {
				req.NoiseLevel = &noise
			}
			if flags.Changed("temperature") {
				req.Temperature = &temperature
			}
			if flags.Changed("crowdedness") {
				req.Crowdedness = &crowdedness
			}
			if flags.Changed("outlets") {
				req.OutletsAvailable = &outlets
			}
			if flags.Changed("rating") {
				req.Rating = &rating
			}
			if flags.Changed("feedback") {
				req.Feedback = &feedback
			}
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().CheckOut(ctx, args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&noise, "noise", 0, "measured noise level in dB (0-120)")
	cmd.Flags().IntVar(&temperature, "temperature", 0, "temperature 1-5")
	cmd.Flags().IntVar(&crowdedness, "crowdedness", 0, "crowdedness 1-5")
	cmd.Flags().BoolVar(&outlets, "outlets", false, "outlets were available")
	cmd.Flags().IntVar(&rating, "rating", 0, "rating 1-5")
	cmd.Flags().StringVar(&feedback, "feedback", "", "free text feedback")
	return cmd
}

func newActiveCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the caller's active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Active(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newHistoryCmd(opts *globalOpts) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().History(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum sessions (server default when 0)")
	return cmd
}

func newStatsCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show coins, hours and streaks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newGhostsCmd(opts *globalOpts) *cobra.Command {
	var locationID string
	ghosts := &cobra.Command{
		Use:   "ghosts",
		Short: "List anonymous ghost sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Ghosts(ctx, locationID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	ghosts.Flags().StringVar(&locationID, "location", "", "only ghosts at this location")

	ghosts.AddCommand(&cobra.Command{
		Use:   "received",
		Short: "Count encouragements received by the caller's ghost session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Encouragements(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	})
	ghosts.AddCommand(&cobra.Command{
		Use:   "summary <session-id>",
		Short: "Summarize one of the caller's ghost sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().GhostSummary(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	})
	return ghosts
}

func newEncourageCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "encourage <session-id> <emoji>",
		Short: "Send an emoji to a ghost session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Encourage(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newLocationsCmd(opts *globalOpts) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List study locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Locations(ctx, category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "library|cafe|gym|study|lounge|other")
	return cmd
}

func newLocationCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "location <location-id>",
		Short: "Show live details for a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()
			res, err := opts.client().Location(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
