package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/DmitryBilevich/product-sales-service/internal/errors"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/services"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
	"github.com/DmitryBilevich/product-sales-service/internal/validator"
)

const csvTemplate = "SKU,Name,Category,Price,QuantityInStock,Description,SaleStartDate\n" +
	"SKU-001,Sample Product,Electronics,19.99,100,Optional description,2024-01-15\n"

// ImportHandler exposes the staged import pipeline over HTTP. Expected import
// failures come back as 200 responses with success=false so the review UI can
// show the message; only malformed requests and infrastructure faults map to
// error statuses.
type ImportHandler struct {
	BaseHandler
	importService services.ImportService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewImportHandler(
	importService services.ImportService,
	exportService services.ExportService,
	v *validator.Validator,
	logger utils.Logger,
) *ImportHandler {
	return &ImportHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
		exportService: exportService,
		validator:     v,
	}
}

// UploadFile handles POST /api/products/upload-file
func (h *ImportHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusOK, services.ImportResult{Success: false, Message: "No file uploaded"})
		return
	}

	var sessionID *uuid.UUID
	if raw := c.PostForm("importSessionId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid import session id", err)
			return
		}
		sessionID = &parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read uploaded file", err)
		return
	}
	defer file.Close()

	result, err := h.importService.Upload(c.Request.Context(), file, fileHeader.Size, fileHeader.Filename, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetImportStaging handles GET /api/products/import-staging
func (h *ImportHandler) GetImportStaging(c *gin.Context) {
	sessionID, ok := parseSessionQuery(c)
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Missing or invalid importSessionId", nil)
		return
	}

	opts := repositories.StagingListOptions{
		PageNumber: queryInt(c, "pageNumber", 1),
		PageSize:   queryInt(c, "pageSize", 10),
		SortField:  c.DefaultQuery("sortField", "RowNumber"),
		SortOrder:  queryInt(c, "sortOrder", 1),
	}
	if err := h.validator.ValidateStruct(&opts); err != nil {
		h.handleServiceError(c, apperrors.ToValidationErrors(err))
		return
	}

	page, err := h.importService.ReviewPage(c.Request.Context(), sessionID, opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateStaging handles PUT /api/products/update-staging
func (h *ImportHandler) UpdateStaging(c *gin.Context) {
	var req services.UpdateStagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, apperrors.ToValidationErrors(err))
		return
	}

	updated, err := h.importService.UpdateRow(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Staging item updated successfully",
		"item":    updated,
	})
}

// DeleteStaging handles DELETE /api/products/delete-staging/:stagingId.
// The importSessionId query parameter is optional; when present it scopes
// the delete to that session, otherwise the staging id alone addresses the
// row.
func (h *ImportHandler) DeleteStaging(c *gin.Context) {
	stagingID, ok := parseUintParam(c, "stagingId")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid staging id", nil)
		return
	}

	sessionID := uuid.Nil
	if raw := c.Query("importSessionId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid import session id", err)
			return
		}
		sessionID = parsed
	}

	if err := h.importService.DeleteRow(c.Request.Context(), sessionID, stagingID); err != nil {
		if errors.Is(err, services.ErrStagingRowNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "Import item not found", nil)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.ImportResult{
		Success:        true,
		Message:        "Import item deleted successfully",
		ProcessedCount: 1,
	})
}

type sessionRequest struct {
	ImportSessionID uuid.UUID `json:"importSessionId" binding:"required"`
}

// ProcessImport handles POST /api/products/process-import
func (h *ImportHandler) ProcessImport(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.importService.Commit(c.Request.Context(), req.ImportSessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClearImport handles POST /api/products/clear-import
func (h *ImportHandler) ClearImport(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.importService.Clear(c.Request.Context(), req.ImportSessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportProducts handles POST /api/products/export
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	var filters repositories.ProductFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&filters); err != nil {
		h.handleServiceError(c, apperrors.ToValidationErrors(err))
		return
	}

	data, err := h.exportService.ExportProducts(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("products_export_%s.xlsx", time.Now().Format("20060102_150405")), data)
}

// ExportImport handles POST /api/products/export-import
func (h *ImportHandler) ExportImport(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	data, err := h.exportService.ExportStaging(c.Request.Context(), req.ImportSessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("import_data_%s.xlsx", time.Now().Format("20060102_150405")), data)
}

// DownloadTemplate handles GET /api/products/download-template
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="product_import_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvTemplate))
}

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
