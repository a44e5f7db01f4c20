package handler

import (
	"errors"
	"io"
	"net/http"

	"property-ingestion-backend/internal/parser"
	"property-ingestion-backend/internal/repository"
	service "property-ingestion-backend/internal/services/ingestion"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IngestionHandler struct {
	service *service.Service
	logger  *zap.Logger
}

func NewIngestionHandler(s *service.Service, logger *zap.Logger) *IngestionHandler {
	return &IngestionHandler{service: s, logger: logger}
}

// Upload accepts a multipart file plus owning company/user ids, stores the
// bytes and creates the UploadRecord in state uploaded.
func (h *IngestionHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	companyID, err := uuid.Parse(c.PostForm("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
		return
	}
	userID, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	record, err := h.service.Upload(c.Request.Context(), service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		CompanyID:   companyID,
		UserID:      userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrUnsupportedFileType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("upload failed", zap.String("file", header.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "file uploaded",
		"upload":  record,
	})
}

// Analyze runs classification for one upload and returns the result,
// including any bulk-normalized data.
func (h *IngestionHandler) Analyze(c *gin.Context) {
	uploadID, err := uuid.Parse(c.Param("uploadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload ID"})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), uploadID)
	if err != nil {
		var perr *parser.ParseError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		case errors.Is(err, repository.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "upload has already been analyzed"})
		case errors.As(err, &perr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			h.logger.Error("analysis failed", zap.String("upload_id", uploadID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

// Commit inserts reviewed normalized records into the target table.
func (h *IngestionHandler) Commit(c *gin.Context) {
	uploadID, err := uuid.Parse(c.Param("uploadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload ID"})
		return
	}

	var payload struct {
		DataType       string           `json:"data_type"`
		NormalizedData []map[string]any `json:"normalized_data"`
		CompanyID      string           `json:"company_id"`
		UserID         string           `json:"user_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
		return
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	result, err := h.service.Commit(c.Request.Context(), service.CommitInput{
		UploadID:  uploadID,
		DataType:  payload.DataType,
		Records:   payload.NormalizedData,
		CompanyID: companyID,
		UserID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedDataType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		default:
			h.logger.Error("commit failed", zap.String("upload_id", uploadID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inserted_count": result.InsertedCount,
		"errors":         result.Errors,
	})
}

// History returns all uploads for a company, newest first.
func (h *IngestionHandler) History(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
		return
	}

	records, err := h.service.History(c.Request.Context(), companyID)
	if err != nil {
		h.logger.Error("history lookup failed", zap.String("company_id", companyID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": records})
}
