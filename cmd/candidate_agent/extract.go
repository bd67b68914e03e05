package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/ingestion"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract recruitment form fields from a CV file",
	Long:  "Read a CV (PDF or Word), locate its recruitment form and print the extracted fields without saving a candidate.",
	RunE:  runExtract,
}

var (
	extractInputFile  string
	extractOutputFile string
	extractFormat     string
)

func init() {
	extractCmd.Flags().StringVarP(&extractInputFile, "in", "i", "", "Path to the CV file")
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Path to output file (defaults to stdout)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "json", "Output format: json or yaml")

	if err := extractCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark 'in' flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractFormat != "json" && extractFormat != "yaml" {
		return fmt.Errorf("unknown format %q (use json or yaml)", extractFormat)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := ingestion.FileText(extractInputFile)
	if err != nil {
		return fmt.Errorf("failed to read CV: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := llm.NewClient(ctx, cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer model.Close()

	fields, err := extraction.NewExtractor(model, logger).Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to extract fields: %w", err)
	}

	var out []byte
	if extractFormat == "yaml" {
		out, err = yaml.Marshal(fields)
	} else {
		out, err = json.MarshalIndent(fields, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	if extractOutputFile == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}
	if err := os.WriteFile(extractOutputFile, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Extracted fields written to %s\n", extractOutputFile)
	return nil
}
