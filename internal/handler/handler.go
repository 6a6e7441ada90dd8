package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medvision/internal/domain"
	"medvision/internal/service"
)

type Handler struct {
	service service.StudyService
	log     *zap.Logger
}

func NewHandler(service service.StudyService, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// UploadImages accepts a multipart form with one or more "images" files.
// Individual file failures are reported in the summary; the call itself
// fails only on empty input or when the file cap is exceeded.
func (h *Handler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.log.Error("Failed to parse multipart form", zap.Error(err))
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "invalid multipart form")
		return
	}

	var files []service.FileUpload
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			h.log.Error("Failed to open uploaded file",
				zap.String("filename", fh.Filename),
				zap.Error(err))
			respondError(c, http.StatusInternalServerError, ErrCodeInternal, "failed to read uploaded file")
			return
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.log.Error("Failed to read uploaded file",
				zap.String("filename", fh.Filename),
				zap.Error(err))
			respondError(c, http.StatusInternalServerError, ErrCodeInternal, "failed to read uploaded file")
			return
		}

		files = append(files, service.FileUpload{Filename: fh.Filename, Data: data})
	}

	summary, err := h.service.UploadImages(c.Request.Context(), files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, "Upload processed", summary)
}

type analyzeRequest struct {
	Images       []domain.UploadedImage `json:"images" binding:"required"`
	SystemPrompt string                 `json:"system_prompt"`
}

// AnalyzeImages runs the batch pipeline over the supplied image list. A run
// where every batch failed is still a 200; the failure is carried in the
// payload status.
func (h *Handler) AnalyzeImages(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	summary, err := h.service.AnalyzeImages(c.Request.Context(), req.Images, req.SystemPrompt, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, "Analysis completed", summary)
}

type reportRequest struct {
	Images       []domain.UploadedImage `json:"images" binding:"required"`
	Patient      *domain.PatientInfo    `json:"patient"`
	SystemPrompt string                 `json:"system_prompt"`
}

// GenerateReport runs the pipeline and compiles the findings into a single
// text report.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidation, "invalid request body: "+err.Error())
		return
	}

	summary, err := h.service.GenerateReport(c.Request.Context(), req.Images, req.Patient, req.SystemPrompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, "Report generated", summary)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
