package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/leadforge/internal/bootstrap"
	"github.com/octobees/leadforge/internal/dto"
	"github.com/octobees/leadforge/internal/service"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate leads for a prompt",
	Long:  "Runs the full lead pipeline once and prints the leads with their validation and scraping summaries.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		website, _ := cmd.Flags().GetString("website")
		scrape, _ := cmd.Flags().GetBool("scrape")
		format, _ := cmd.Flags().GetString("format")
		mode, _ := cmd.Flags().GetString("scraper-mode")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		format = strings.ToLower(format)
		if format != "json" && format != "csv" {
			return eris.Errorf("unsupported format %q (use json or csv)", format)
		}
		if mode != "" {
			cfg.Scraper.Mode = strings.ToLower(mode)
		}
		if concurrency > 0 {
			cfg.Pipeline.Concurrency = concurrency
		}

		svc, err := bootstrap.NewLeadService(cfg, nil)
		if err != nil {
			return eris.Wrap(err, "configure pipeline")
		}

		out, err := svc.Generate(cmd.Context(), service.GenerateInput{
			Prompt:         prompt,
			Website:        website,
			ScrapeContacts: scrape,
			TenantID:       "cli",
		})
		if err != nil {
			return eris.Wrap(err, "generate")
		}

		if err := writeOutput(os.Stdout, format, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d leads, %d confirmed at Companies House. %s\n",
			len(out.Leads), out.ValidationSummary.CompaniesHouseFound, out.ScrapingSummary.Message)
		return nil
	},
}

func writeOutput(w io.Writer, format string, out *service.GenerateOutput) error {
	if format == "csv" {
		return service.WriteLeadsCSV(w, out.Leads)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.GenerateLeadsResponse{
		Leads:             out.Leads,
		ValidationSummary: out.ValidationSummary,
		ScrapingSummary:   out.ScrapingSummary,
	})
}

func init() {
	generateCmd.Flags().String("prompt", "", "free-text description of the leads to find")
	generateCmd.Flags().String("website", "", "website of the business the leads are for")
	generateCmd.Flags().Bool("scrape", false, "scrape lead websites for named contacts")
	generateCmd.Flags().String("format", "json", "output format: json or csv")
	generateCmd.Flags().String("scraper-mode", "", "override SCRAPER_MODE (browser, http, worker)")
	generateCmd.Flags().Int("concurrency", 0, "override PIPELINE_CONCURRENCY")
	_ = generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}
