package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/observability"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume against a job description",
	Long:  "Extracts skills from a resume (PDF, DOCX, LaTeX or text) and a job description and reports coverage, gaps and recommendations.",
	RunE:  runMatch,
}

var (
	matchResume string
	matchJob    string
	matchJobURL string
	matchRole   string
	matchJSON   bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to the resume file (required)")
	matchCmd.Flags().StringVarP(&matchJob, "job", "j", "", "Path to a job description text file")
	matchCmd.Flags().StringVar(&matchJobURL, "job-url", "", "Job posting URL to fetch instead of --job")
	matchCmd.Flags().StringVar(&matchRole, "role", "", "Target role ID to blend in role requirements")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print the result as JSON")

	if err := matchCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	matchCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	resume, err := readResume(ctx, matchResume)
	if err != nil {
		return err
	}

	jobText, err := readJob(matchJob)
	if err != nil {
		return err
	}
	if matchJobURL != "" {
		jd, err := fetch.NewFetcher(fetch.FetcherConfig{}, zap.L()).JobDescription(ctx, matchJobURL)
		if err != nil {
			return err
		}
		jobText = jd.Text
	}
	if strings.TrimSpace(jobText) == "" {
		return fmt.Errorf("a job description is required: pass --job or --job-url")
	}

	result := matching.Match(resume.Text, jobText, matchRole)
	if matchJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatchResult(result)
	return nil
}
