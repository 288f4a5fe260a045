package handlers

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"spendtrail/internal/dto"
	"spendtrail/internal/errors"
	"spendtrail/internal/pipeline"
	"spendtrail/internal/services"
)

const defaultSampleCount = 100

// ImportHandler handles CSV import HTTP requests
type ImportHandler struct {
	ledgerService services.LedgerServiceInterface
	sampleData    services.SampleDataGeneratorInterface
}

// NewImportHandler creates a new import handler
func NewImportHandler(
	ledgerService services.LedgerServiceInterface,
	sampleData services.SampleDataGeneratorInterface,
) *ImportHandler {
	return &ImportHandler{
		ledgerService: ledgerService,
		sampleData:    sampleData,
	}
}

// StartImport accepts a CSV source and starts a background import batch.
// The source is either a multipart file under the "file" field or the raw
// request body. A batch still running is superseded: it is cancelled and
// its partial results are discarded.
// @Summary Start a CSV import
// @Description Upload a CSV export and start a background import batch. A running batch is cancelled and superseded.
// @Tags Imports
// @Accept mpfd
// @Produce json
// @Success 202 {object} dto.StartImportResponse "Import accepted"
// @Failure 422 {object} errors.ErrorResponse "IMPORT_001 - Source unreadable"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /imports [post]
func (h *ImportHandler) StartImport(c echo.Context) error {
	data, err := importSource(c)
	if err != nil {
		return SendError(c, errors.ImportSourceUnreadable, errors.WithDetails(err.Error()))
	}

	batchID, _, err := h.ledgerService.Import(c.Request().Context(), bytes.NewReader(data))
	if err != nil {
		return sendImportError(c, err)
	}

	return c.JSON(http.StatusAccepted, dto.StartImportResponse{
		BatchID: batchID,
		Message: "Import started",
	})
}

// GetCurrentImport returns the state of the most recent import batch
// @Summary Get current import
// @Description Retrieve the state of the running or most recently finished import batch
// @Tags Imports
// @Produce json
// @Success 200 {object} pipeline.Batch "Batch state with rejections"
// @Failure 404 {object} errors.ErrorResponse "IMPORT_003 - No import batch found"
// @Router /imports/current [get]
func (h *ImportHandler) GetCurrentImport(c echo.Context) error {
	batch, err := h.ledgerService.CurrentImport()
	if err != nil {
		if err == pipeline.ErrNoImport {
			return SendError(c, errors.ImportNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, batch)
}

// CancelImport requests cooperative cancellation of the running batch
// @Summary Cancel the running import
// @Description Request cancellation of the running import batch. Already imported batches are unaffected.
// @Tags Imports
// @Produce json
// @Success 200 {object} dto.CancelImportResponse "Cancellation outcome"
// @Router /imports/current [delete]
func (h *ImportHandler) CancelImport(c echo.Context) error {
	cancelled := h.ledgerService.CancelImport()

	message := "No running import to cancel"
	if cancelled {
		message = "Import cancellation requested"
	}

	return c.JSON(http.StatusOK, dto.CancelImportResponse{
		Cancelled: cancelled,
		Message:   message,
	})
}

// GenerateSample generates realistic sample transactions and imports them
// @Summary Import generated sample data
// @Description Generate realistic sample transactions and run them through the import pipeline
// @Tags Imports
// @Accept json
// @Produce json
// @Success 202 {object} dto.StartImportResponse "Import accepted"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Router /imports/sample [post]
func (h *ImportHandler) GenerateSample(c echo.Context) error {
	var req dto.GenerateSampleRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	count := req.Count
	if count == 0 {
		count = defaultSampleCount
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, -3, 0)
	if req.StartDate != "" {
		startDate, _ = time.Parse("2006-01-02", req.StartDate)
	}
	if req.EndDate != "" {
		endDate, _ = time.Parse("2006-01-02", req.EndDate)
	}
	if !startDate.Before(endDate) {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("start_date must be before end_date"))
	}

	csvData := h.sampleData.GenerateCSV(startDate, endDate, count)

	batchID, _, err := h.ledgerService.Import(c.Request().Context(), strings.NewReader(csvData))
	if err != nil {
		return sendImportError(c, err)
	}

	return c.JSON(http.StatusAccepted, dto.StartImportResponse{
		BatchID: batchID,
		Message: "Sample import started",
	})
}

// importSource reads the CSV source from the request: a multipart "file"
// field when present, otherwise the raw body. The source is buffered in full
// because the request body and multipart temp files die with the request,
// while the batch runs on after the response is written.
func importSource(c echo.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			return nil, openErr
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	return io.ReadAll(c.Request().Body)
}

// sendImportError maps pipeline errors to API error responses
func sendImportError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, pipeline.ErrSourceUnreadable):
		return SendError(c, errors.ImportSourceUnreadable, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
