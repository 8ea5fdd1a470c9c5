package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/depot-statement-analyzer/internal/api"
	"github.com/insightdelivered/depot-statement-analyzer/internal/extractor"
	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
	"github.com/insightdelivered/depot-statement-analyzer/internal/pricefeed"
	"github.com/insightdelivered/depot-statement-analyzer/internal/trading"
	"github.com/insightdelivered/depot-statement-analyzer/internal/writer"
)

const version = "1.2.0"

func main() {
	// CLI flags
	outputFlag := flag.String("output", "", "Output base path (defaults to input filename without extension)")
	formatFlag := flag.String("format", "csv", "Output format: csv, json, xlsx")
	footerFlag := flag.Float64("footer-band", parser.DefaultFooterBand, "Page footer cutoff in points; fragments below it are ignored")
	securitiesFlag := flag.String("securities", "", "Depot statement PDF used to enrich open positions with market values")
	estimateFlag := flag.Bool("estimate-quantities", false, "Estimate share quantities from trade amounts and daily closing prices")
	proxyFlag := flag.String("price-proxy", "", "Price feed proxy base URL (relays /yahoo/chart and /yahoo/quote)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	portFlag := flag.Int("port", 8080, "HTTP port for --serve")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Depot Statement Analyzer
by Insight Delivered (QEA AutoLens)

Parses broker account statement PDFs (German, Italian or English layout)
into structured transaction tables, verifies balance continuity, and
reconstructs trading P&L per instrument.

Usage:
  depot-statement-analyzer [flags] <statement.pdf> [statement2.pdf ...]
  depot-statement-analyzer --serve [--port=8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a statement to semicolon-separated CSV
  depot-statement-analyzer kontoauszug.pdf

  # Excel output with typed date and Euro cells
  depot-statement-analyzer --format=xlsx kontoauszug.pdf

  # Enrich open positions with current depot holdings
  depot-statement-analyzer --securities=depotauszug.pdf kontoauszug.pdf

  # Estimate share quantities from trade amounts and price history
  depot-statement-analyzer --estimate-quantities kontoauszug.pdf

  # Run as an HTTP service
  depot-statement-analyzer --serve --port=9090
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("depot-statement-analyzer v%s\n", version)
		os.Exit(0)
	}

	if *serveFlag {
		app := api.NewApp()
		addr := fmt.Sprintf(":%d", *portFlag)
		fmt.Printf("Listening on %s\n", addr)
		log.Fatal(app.Listen(addr))
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	format := strings.ToLower(*formatFlag)
	switch format {
	case "csv", "json", "xlsx":
	default:
		fatalf("Unknown format %q. Supported: csv, json, xlsx\n", *formatFlag)
	}

	var holdings []models.Security
	if *securitiesFlag != "" {
		var err error
		holdings, err = loadSecurities(*securitiesFlag)
		if err != nil {
			fatalf("Error reading securities %s: %v\n", *securitiesFlag, err)
		}
		fmt.Printf("Loaded %d holding(s) from %s\n", len(holdings), *securitiesFlag)
	}

	var feed *pricefeed.Client
	if *estimateFlag {
		feed = pricefeed.NewClient(*proxyFlag)
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(inputPath, *outputFlag, format, *footerFlag, holdings, feed); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

// cliObserver prints parse progress to stdout. Per-page progress callbacks
// are ignored; the status lines already name the page.
type cliObserver struct{}

func (cliObserver) OnStatus(msg string) { fmt.Printf("  %s\n", msg) }
func (cliObserver) OnProgress(int, int) {}

func processFile(inputPath, outputBase, format string, footerBand float64, holdings []models.Security, feed *pricefeed.Client) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	doc, err := extractor.Open(inputPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	result, err := parser.Parse(doc, parser.Options{
		Observer:   cliObserver{},
		FooterBand: footerBand,
	})
	if err != nil {
		return err
	}

	cash, failed := parser.ApplySanityChecks(result.Cash)
	fmt.Printf("  Found %d cash and %d interest transaction(s)\n", len(cash), len(result.Interest))
	if len(cash) == 0 && len(result.Interest) == 0 {
		fmt.Println("  Warning: No transactions found. The PDF layout may not match expected patterns.")
	}
	if failed > 0 {
		fmt.Printf("  Warning: %d balance continuity check(s) failed\n", failed)
	}

	base := outputBase
	if base == "" {
		base = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	}
	if err := writeTables(base, format, cash, result.Interest); err != nil {
		return err
	}

	// Trading summary goes to stdout; it's an analysis, not an export table.
	trades := trading.ParseTransactions(cash)
	if len(trades) > 0 {
		summary := trading.CalculatePnL(trades)
		summary = trading.EnrichWithSecurities(summary, holdings)
		fmt.Printf("  Trades: %d across %d instrument(s), volume %.2f EUR\n",
			summary.TotalTrades, len(summary.PnLSummary), summary.TotalVolume)
		fmt.Printf("  Invested: %.2f EUR, realized: %.2f EUR\n",
			summary.TotalInvested, summary.TotalRealized)
		if summary.HasSecuritiesData {
			fmt.Printf("  Current value: %.2f EUR, unrealized: %.2f EUR (prices of %s)\n",
				summary.TotalCurrentValue, summary.TotalUnrealizedPnL, summary.SecuritiesDate)
		}
		if feed != nil {
			for _, est := range feed.EstimateFromTrades(context.Background(), trades, nil) {
				if est.Quantity > 0 {
					fmt.Printf("  %s: ~%.4f %s @ %.2f EUR\n", est.Date, est.Quantity, est.Symbol, est.PriceUsed)
				}
			}
		}
	}

	fmt.Println("  Done.")
	return nil
}

func writeTables(base, format string, cash []models.CashTransaction, interest []models.InterestTransaction) error {
	cashPath := fmt.Sprintf("%s-cash.%s", base, format)
	interestPath := fmt.Sprintf("%s-interest.%s", base, format)

	switch format {
	case "csv":
		w := &writer.CSVWriter{}
		if err := w.WriteCashToFile(cashPath, cash); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
		if err := w.WriteInterestToFile(interestPath, interest); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
	case "json":
		w := &writer.JSONWriter{}
		if err := w.WriteToFile(cashPath, cash); err != nil {
			return fmt.Errorf("JSON write failed: %w", err)
		}
		if err := w.WriteToFile(interestPath, interest); err != nil {
			return fmt.Errorf("JSON write failed: %w", err)
		}
	case "xlsx":
		w := &writer.XLSXWriter{}
		if err := w.WriteCashToFile(cashPath, cash); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
		if err := w.WriteInterestToFile(interestPath, interest); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
	}

	fmt.Printf("  Output: %s, %s\n", cashPath, interestPath)
	return nil
}

func loadSecurities(path string) ([]models.Security, error) {
	doc, err := extractor.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages, err := doc.AllPages()
	if err != nil {
		return nil, err
	}
	return trading.NewSecuritiesParser().Parse(pages), nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
