package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ikhlasbhojani/learnme/internal/config"
	"github.com/ikhlasbhojani/learnme/internal/export"
	"github.com/ikhlasbhojani/learnme/internal/types"
)

var (
	extractURL     string
	extractDepth   int
	extractMaxURLs int
	extractStrict  bool
	extractMode    string
	extractTimeout int
	extractOutDir  string
	extractFormat  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract topics from a documentation site",
	Long:  `Crawl a documentation site once and print the organized topic list as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := types.ExtractionMode(extractMode)
		switch mode {
		case types.ModeHTTP, types.ModeBrowser, types.ModeAuto:
		default:
			return fmt.Errorf("invalid mode %q: must be http, browser or auto", extractMode)
		}

		app, err := newApp(false)
		if err != nil {
			return err
		}
		defer app.close()

		cc := crawlContextFromFlags(cmd, app.cfg)

		result := app.extractor.ExtractTopics(cmd.Context(), "", cc)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.Error != "" {
			return fmt.Errorf("extraction failed: %s", result.Error)
		}

		if extractOutDir != "" {
			exporter, err := export.NewExporter(extractOutDir)
			if err != nil {
				return err
			}
			switch extractFormat {
			case "json":
				return exporter.ExportJSON(result, "topics.json")
			case "csv":
				return exporter.ExportCSV(result, "topics.csv")
			default:
				return fmt.Errorf("invalid format %q: must be json or csv", extractFormat)
			}
		}
		return nil
	},
}

// crawlContextFromFlags builds the crawl parameters from the crawler
// config section, with explicitly set flags taking precedence.
func crawlContextFromFlags(cmd *cobra.Command, cfg *config.Config) types.CrawlContext {
	cc := types.CrawlContext{
		MainURL:         extractURL,
		MaxDepth:        cfg.Crawler.MaxDepth,
		MaxURLsPerLevel: cfg.Crawler.MaxURLsPerLevel,
		StrictMode:      cfg.Crawler.StrictMode,
		Mode:            types.ExtractionMode(cfg.Crawler.Mode),
		Timeout:         cfg.Crawler.Timeout,
		CrawlBudget:     cfg.Crawler.CrawlBudget,
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cc.MaxDepth = extractDepth
	}
	if flags.Changed("max-urls") {
		cc.MaxURLsPerLevel = extractMaxURLs
	}
	if flags.Changed("strict") {
		cc.StrictMode = extractStrict
	}
	if flags.Changed("mode") {
		cc.Mode = types.ExtractionMode(extractMode)
	}
	if flags.Changed("timeout") {
		cc.Timeout = time.Duration(extractTimeout) * time.Second
	}
	return cc
}

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Documentation root URL (required)")
	extractCmd.Flags().IntVar(&extractDepth, "max-depth", 5, "Maximum crawl depth")
	extractCmd.Flags().IntVar(&extractMaxURLs, "max-urls", 200, "Maximum URLs expanded per page")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "Exclude unverified links from output")
	extractCmd.Flags().StringVar(&extractMode, "mode", "auto", "Extraction mode: http/browser/auto")
	extractCmd.Flags().IntVar(&extractTimeout, "timeout", 30, "Per-request timeout in seconds")
	extractCmd.Flags().StringVar(&extractOutDir, "output", "", "Directory to also write results into (optional)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "json", "Output file format: json/csv")

	extractCmd.MarkFlagRequired("url")
}
