package api

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/davidmtz-dev/bancos-reader/internal/buildinfo"
	"github.com/davidmtz-dev/bancos-reader/internal/detect"
	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
	"github.com/davidmtz-dev/bancos-reader/internal/parser"
	"github.com/davidmtz-dev/bancos-reader/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	Strategy     models.Strategy   `json:"strategy,omitempty"`
	Account      string            `json:"account,omitempty"`
	Currency     string            `json:"currency,omitempty"`
	Movements    []models.Movement `json:"movements"`
	CSV          string            `json:"csv,omitempty"`
	TotalCharges float64           `json:"totalCharges"`
	TotalCredits float64           `json:"totalCredits"`
	Count        int               `json:"count"`
	Version      string            `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Log      zerolog.Logger
	Defaults parser.Defaults
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/convert", h.handleConvert)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": buildinfo.Version,
	})
}

func (h *Handler) handleConvert(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	// Strategy detection is filename-driven, so the upload keeps its
	// original name inside a private temp directory.
	tmpDir, err := os.MkdirTemp("", "statement-")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp dir.")
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	// An explicit strategy form value bypasses detection.
	var choice models.StrategyChoice
	if s := c.FormValue("strategy"); s != "" {
		switch models.Strategy(s) {
		case models.StrategyPositional, models.StrategyLinePattern:
			choice = models.StrategyChoice{Strategy: models.Strategy(s)}
		default:
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown strategy %q.", s))
		}
	} else {
		var ok bool
		choice, ok = detect.Detect(tmpPath)
		if !ok {
			return writeError(c, fiber.StatusUnprocessableEntity,
				fmt.Sprintf("Could not determine statement layout for %q.", fileHeader.Filename))
		}
	}

	doc, err := extractor.Open(tmpPath)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	p, err := parser.New(choice, h.Defaults)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	movements, err := p.Parse(doc)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if err := csvWriter.Write(&csvBuf, movements); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	var totalCharges, totalCredits float64
	for _, m := range movements {
		if m.Charge != nil {
			totalCharges += *m.Charge
		}
		if m.Credit != nil {
			totalCredits += *m.Credit
		}
	}

	// nil marshals to JSON null, not []
	if movements == nil {
		movements = []models.Movement{}
	}

	h.Log.Info().Str("file", fileHeader.Filename).Str("strategy", string(choice.Strategy)).
		Int("movements", len(movements)).Msg("converted")

	return c.JSON(ConvertResponse{
		Success:      true,
		Strategy:     choice.Strategy,
		Account:      choice.Account,
		Currency:     choice.Currency,
		Movements:    movements,
		CSV:          csvBuf.String(),
		TotalCharges: totalCharges,
		TotalCredits: totalCredits,
		Count:        len(movements),
		Version:      buildinfo.Version,
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:   false,
		Error:     msg,
		Movements: []models.Movement{},
	})
}
