package domain

import (
	"errors"
	"time"
)

// ErrValidation marks caller errors: bad input at an HTTP boundary. Handlers
// map it to a 400, everything else to a 500.
var ErrValidation = errors.New("validation error")

type FileType string

const (
	FileTypeDicom FileType = "dicom"
	FileTypeJPEG  FileType = "jpeg"
	FileTypePNG   FileType = "png"
	FileTypeBMP   FileType = "bmp"
	FileTypeTIFF  FileType = "tiff"
)

type UploadedImage struct {
	ID            string         `json:"id"`
	OriginalName  string         `json:"original_name"`
	StoredName    string         `json:"stored_name"`
	StoragePath   string         `json:"storage_path"`
	FileType      FileType       `json:"file_type"`
	Size          int64          `json:"size"`
	IsDicom       bool           `json:"is_dicom"`
	Base64Payload string         `json:"base64_payload,omitempty"`
	DicomMetadata *DicomMetadata `json:"dicom_metadata,omitempty"`
	UploadedAt    time.Time      `json:"uploaded_at"`
	Processed     bool           `json:"processed"`
}

type DicomMetadata struct {
	PatientName string `json:"patient_name"`
	PatientID   string `json:"patient_id"`
	StudyDate   string `json:"study_date"`
	StudyTime   string `json:"study_time"`
	Modality    string `json:"modality"`
}

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// ImageBatch is a fixed-size window of uploaded images analyzed in a single
// AI request. Owned by the batch runner for the duration of one run; never
// persisted.
type ImageBatch struct {
	ID          string          `json:"id"`
	Index       int             `json:"index"`
	Images      []UploadedImage `json:"images"`
	Status      BatchStatus     `json:"status"`
	Response    string          `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// AnalysisResult is the flat record parsed out of one AI reply. The model's
// free text is kept whole in Findings; Observations and TechnicalNotes stay
// empty because the reply is not decomposed.
type AnalysisResult struct {
	Findings       string   `json:"findings"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	Observations   []string `json:"observations,omitempty"`
	TechnicalNotes string   `json:"technical_notes,omitempty"`
}

// Wire strings for the overall state of a processing run.
const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// ProcessingStatus is a derived snapshot of a run in flight. It is a
// projection over the batch list, never a source of truth.
type ProcessingStatus struct {
	TotalImages     int    `json:"total_images"`
	ProcessedImages int    `json:"processed_images"`
	CurrentBatch    int    `json:"current_batch"`
	TotalBatches    int    `json:"total_batches"`
	State           string `json:"state"`
	Progress        int    `json:"progress"`
}

// NewProcessingStatus computes the progress percentage, guarding the
// zero-image case (progress is 0 when there is nothing to process).
func NewProcessingStatus(totalImages, processedImages, currentBatch, totalBatches int, state string) ProcessingStatus {
	progress := 0
	if totalImages > 0 {
		progress = processedImages * 100 / totalImages
	}
	return ProcessingStatus{
		TotalImages:     totalImages,
		ProcessedImages: processedImages,
		CurrentBatch:    currentBatch,
		TotalBatches:    totalBatches,
		State:           state,
		Progress:        progress,
	}
}

type PatientInfo struct {
	Name      string `json:"name,omitempty"`
	ID        string `json:"id,omitempty"`
	StudyDate string `json:"study_date,omitempty"`
	Modality  string `json:"modality,omitempty"`
}

type DiagnosticReport struct {
	ID             string       `json:"id"`
	Patient        *PatientInfo `json:"patient,omitempty"`
	TotalImages    int          `json:"total_images"`
	Batches        []ImageBatch `json:"batches"`
	Status         string       `json:"status"`
	Findings       string       `json:"findings"`
	Recommendation string       `json:"recommendation"`
	CreatedAt      time.Time    `json:"created_at"`
	CompletedAt    time.Time    `json:"completed_at"`
	GeneratedBy    string       `json:"generated_by"`
}
