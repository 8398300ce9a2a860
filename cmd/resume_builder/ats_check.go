package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ats"
	"github.com/jonathan/resume-builder/internal/observability"
)

var atsCheckCmd = &cobra.Command{
	Use:   "ats-check",
	Short: "Check a resume for ATS compatibility",
	Long:  "Runs the applicant tracking system rules over a resume and prints the score, per-check breakdown and issues.",
	RunE:  runATSCheck,
}

var (
	atsResume string
	atsJob    string
	atsRole   string
	atsJSON   bool
)

func init() {
	atsCheckCmd.Flags().StringVarP(&atsResume, "resume", "r", "", "Path to the resume file (required)")
	atsCheckCmd.Flags().StringVarP(&atsJob, "job", "j", "", "Path to a job description text file (enables the keyword check)")
	atsCheckCmd.Flags().StringVar(&atsRole, "role", "", "Target role ID for the keyword check")
	atsCheckCmd.Flags().BoolVar(&atsJSON, "json", false, "Print the report as JSON")

	if err := atsCheckCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(atsCheckCmd)
}

func runATSCheck(cmd *cobra.Command, _ []string) error {
	resume, err := readResume(cmd.Context(), atsResume)
	if err != nil {
		return err
	}
	jobText, err := readJob(atsJob)
	if err != nil {
		return err
	}

	report := ats.Check(ats.Input{
		Text:           resume.Text,
		LaTeX:          resume.Source,
		JobDescription: jobText,
		Role:           atsRole,
	})
	if atsJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintATSReport(report)
	return nil
}
