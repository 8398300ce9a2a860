package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/types"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a LaTeX resume to PDF",
	Long:  "Runs pdflatex on a LaTeX file and writes the PDF. On failure the offending line and message are reported.",
	RunE:  runCompile,
}

var (
	compileInput       string
	compileOutput      string
	compilePlaceholder bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "in", "i", "", "Path to the LaTeX file (required)")
	compileCmd.Flags().StringVarP(&compileOutput, "out", "o", "", "Path to the output PDF (default: input with .pdf)")
	compileCmd.Flags().BoolVar(&compilePlaceholder, "placeholder", false, "Write a placeholder PDF when pdflatex is not installed")

	if err := compileCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, err := os.ReadFile(compileInput)
	if err != nil {
		return fmt.Errorf("failed to read LaTeX file: %w", err)
	}
	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(compileInput, filepath.Ext(compileInput)) + ".pdf"
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	c := newCompiler(cfg, compilePlaceholder || cfg.AllowPlaceholderPDF, zap.L())
	res, err := c.Compile(cmd.Context(), string(source))
	if err != nil {
		var ce *compiler.CompilationError
		if errors.As(err, &ce) {
			printer.PrintCompileError(&types.CompileErrorResponse{Line: ce.Line, Message: ce.Summary()})
		}
		return err
	}

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	printer.PrintCompileResult(out, &types.CompileResponse{
		Pages:       res.Pages,
		Placeholder: res.Placeholder,
		Warnings:    res.Warnings,
	})
	return nil
}
