package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"faceguard/internal/platform/logger"
)

var recalibrateCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Record that the recognition model was recalibrated now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Logging.Level)
		auditor := newAuditor(cfg, log)
		defer auditor.Close()

		m, err := newMonitor(cfg, log, auditor, nil)
		if err != nil {
			return err
		}
		at := time.Now().UTC()
		if err := m.Recalibrate(cmd.Context(), at); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model %s recalibrated at %s\n", m.Model(), at.Format(time.RFC3339))
		return nil
	},
}

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Report drift and calibration status from the performance log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Logging.Level)
		auditor := newAuditor(cfg, log)
		defer auditor.Close()

		m, err := newMonitor(cfg, log, auditor, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		status := m.Status()
		fmt.Fprintf(out, "Model:              %s\n", status.Model)
		fmt.Fprintf(out, "Samples in window:  %d/%d\n", status.PerformanceSamples, status.WindowCapacity)
		if signal, ok := m.DetectDrift(); ok {
			fmt.Fprintf(out, "Drift:              %s\n", signal)
		} else {
			fmt.Fprintln(out, "Drift:              none")
		}
		fmt.Fprintf(out, "Last calibration:   %s\n", status.LastCalibration.Format(time.RFC3339))
		fmt.Fprintf(out, "Calibration needed: %t\n", m.CheckCalibration(time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recalibrateCmd)
	rootCmd.AddCommand(driftCmd)
}
