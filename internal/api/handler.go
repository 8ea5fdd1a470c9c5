// Package api exposes the statement analyzer over HTTP using Fiber.
package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/depot-statement-analyzer/internal/extractor"
	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
	"github.com/insightdelivered/depot-statement-analyzer/internal/stats"
	"github.com/insightdelivered/depot-statement-analyzer/internal/trading"
	"github.com/insightdelivered/depot-statement-analyzer/internal/writer"
)

// Version reported by the health and analyze endpoints.
const Version = "1.2.0"

// AnalyzeResponse is the JSON response from the /api/analyze endpoint.
type AnalyzeResponse struct {
	Success             bool                         `json:"success"`
	Error               string                       `json:"error,omitempty"`
	Cash                []models.CashTransaction     `json:"cash"`
	Interest            []models.InterestTransaction `json:"interest"`
	FailedChecks        int                          `json:"failedChecks"`
	Trading             *models.TradingSummary       `json:"trading,omitempty"`
	TradingTransactions []models.TradingTransaction  `json:"tradingTransactions"`
	Stats               *stats.Summary               `json:"stats,omitempty"`
	CSV                 string                       `json:"csv,omitempty"`
	Count               int                          `json:"count"`
	Version             string                       `json:"version,omitempty"`
}

// NewApp builds the Fiber application with all routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20,
		AppName:   "depot-statement-analyzer",
	})
	app.Get("/api/health", HandleHealth)
	app.Post("/api/analyze", HandleAnalyze)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleAnalyze parses an uploaded statement PDF and returns the extracted
// tables plus derived trading and spending analytics. Form fields:
//
//	file       (required) the statement PDF
//	securities (optional) a depot statement PDF used to enrich open positions
//	footerBand (optional) page footer cutoff in points, default 120
func HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	footerBand := parser.DefaultFooterBand
	if v := c.FormValue("footerBand"); v != "" {
		band, err := strconv.ParseFloat(v, 64)
		if err != nil || band < 0 {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid footerBand value %q.", v))
		}
		footerBand = band
	}

	doc, cleanup, err := openUpload(c, fileHeader)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF could not be opened: %v", err))
	}
	defer cleanup()

	result, err := parser.Parse(doc, parser.Options{FooterBand: footerBand})
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	cash, failed := parser.ApplySanityChecks(result.Cash)
	trades := trading.ParseTransactions(cash)
	summary := trading.CalculatePnL(trades)

	// Optional depot statement for current market values.
	if secHeader, err := c.FormFile("securities"); err == nil {
		secDoc, secCleanup, err := openUpload(c, secHeader)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Securities PDF could not be opened: %v", err))
		}
		defer secCleanup()

		pages, err := secDoc.AllPages()
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Securities PDF could not be read: %v", err))
		}
		holdings := trading.NewSecuritiesParser().Parse(pages)
		summary = trading.EnrichWithSecurities(summary, holdings)
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{}
	if err := csvWriter.WriteCash(&csvBuf, cash); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	if trades == nil {
		trades = []models.TradingTransaction{}
	}
	return c.JSON(AnalyzeResponse{
		Success:             true,
		Cash:                cash,
		Interest:            result.Interest,
		FailedChecks:        failed,
		Trading:             summary,
		TradingTransactions: trades,
		Stats:               stats.Analyze(cash),
		CSV:                 csvBuf.String(),
		Count:               len(cash),
		Version:             Version,
	})
}

// openUpload spools a multipart upload to a temp file and opens it as a PDF
// document. The returned cleanup closes the document and removes the file.
func openUpload(c *fiber.Ctx, header *multipart.FileHeader) (*extractor.Document, func(), error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp.Close()

	if err := c.SaveFile(header, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("failed to save upload: %w", err)
	}

	doc, err := extractor.Open(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		return nil, nil, err
	}
	cleanup := func() {
		doc.Close()
		os.Remove(tmp.Name())
	}
	return doc, cleanup, nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(AnalyzeResponse{
		Success: false,
		Error:   msg,
	})
}
