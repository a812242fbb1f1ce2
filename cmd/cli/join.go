package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/akeren/waitlist-api/internal/form"
	"github.com/akeren/waitlist-api/pkg/utils"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func joinCmd() *cobra.Command {
	var (
		apiURL     string
		siteURL    string
		referral   string
		bestEffort bool
	)

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join the waitlist from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			policy := form.MailRequired
			if bestEffort {
				policy = form.MailBestEffort
			}

			model := form.NewModel(ctx, form.NewHTTPClient(apiURL, nil),
				form.WithOrigin(siteURL),
				form.WithReferral(referral),
				form.WithMailPolicy(policy),
			)

			if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("run signup form: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", utils.GetEnvTrimmedOrDefault("WAITLIST_API_URL", "http://localhost:8080"), "base URL of the waitlist API")
	cmd.Flags().StringVar(&siteURL, "site", utils.GetEnvTrimmedOrDefault("WAITLIST_SITE_URL", "http://localhost:3000"), "origin used in the share link")
	cmd.Flags().StringVar(&referral, "ref", "", "referral code you were invited with")
	cmd.Flags().BoolVar(&bestEffort, "best-effort-mail", false, "enroll even when the welcome email fails")

	return cmd
}
