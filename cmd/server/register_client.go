package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"faceguard/internal/auth/models"
	"faceguard/internal/platform/logger"
)

var registerClientCmd = &cobra.Command{
	Use:   "register-client",
	Short: "Register an API client and print its bearer token",
	RunE:  runRegisterClient,
}

func init() {
	rootCmd.AddCommand(registerClientCmd)

	registerClientCmd.Flags().String("username", "", "Client username (required)")
	registerClientCmd.Flags().String("password", "", "Client password (required)")
	registerClientCmd.Flags().String("email", "", "Contact email (required)")
	registerClientCmd.Flags().String("phone", "", "Contact phone")
	registerClientCmd.Flags().String("purpose", "", "Why the client needs access (required)")
	_ = registerClientCmd.MarkFlagRequired("username")
	_ = registerClientCmd.MarkFlagRequired("password")
	_ = registerClientCmd.MarkFlagRequired("email")
	_ = registerClientCmd.MarkFlagRequired("purpose")
}

func runRegisterClient(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level)
	auditor := newAuditor(cfg, log)
	defer auditor.Close()

	svc := newAuthService(cfg, log, auditor, nil)
	creds, err := svc.Register(cmd.Context(), &models.RegisterRequest{
		Username: mustGetString(cmd, "username"),
		Password: mustGetString(cmd, "password"),
		Email:    mustGetString(cmd, "email"),
		Phone:    mustGetString(cmd, "phone"),
		Purpose:  mustGetString(cmd, "purpose"),
	}, models.Origin{IP: "cli", Device: "faceguard cli"})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\nToken: %s\n", creds.Username, creds.Token)
	return nil
}
