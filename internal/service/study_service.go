package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medvision/internal/aiclient"
	"medvision/internal/config"
	"medvision/internal/dicomdata"
	"medvision/internal/domain"
	"medvision/internal/imaging"
	"medvision/internal/pipeline"
	"medvision/internal/report"
	"medvision/internal/storage"
	"medvision/internal/validator"
)

// FileUpload is one file received at the upload boundary.
type FileUpload struct {
	Filename string
	Data     []byte
}

// UploadSummary reports a partial-success upload: per-file failures are
// collected, never fatal to the call.
type UploadSummary struct {
	Uploaded   int                    `json:"uploaded"`
	Failed     int                    `json:"failed"`
	Errors     []string               `json:"errors,omitempty"`
	DicomCount int                    `json:"dicom_count"`
	ImageCount int                    `json:"image_count"`
	Images     []domain.UploadedImage `json:"images"`
}

type AnalysisSummary struct {
	Batches           []domain.ImageBatch `json:"batches"`
	TotalBatches      int                 `json:"total_batches"`
	SuccessfulBatches int                 `json:"successful_batches"`
	FailedBatches     int                 `json:"failed_batches"`
	Status            string              `json:"status"`
}

type ReportSummary struct {
	Report            domain.DiagnosticReport `json:"report"`
	TotalBatches      int                     `json:"total_batches"`
	SuccessfulBatches int                     `json:"successful_batches"`
	FailedBatches     int                     `json:"failed_batches"`
	SuccessRate       int                     `json:"success_rate"`
}

type StudyService interface {
	UploadImages(ctx context.Context, files []FileUpload) (*UploadSummary, error)
	AnalyzeImages(ctx context.Context, images []domain.UploadedImage, systemPrompt string, observer pipeline.Observer) (*AnalysisSummary, error)
	GenerateReport(ctx context.Context, images []domain.UploadedImage, patient *domain.PatientInfo, systemPrompt string) (*ReportSummary, error)
}

type studyService struct {
	store    storage.Store
	analyzer aiclient.Analyzer
	compiler *report.Compiler
	cfg      *config.Config
	log      *zap.Logger
}

func NewStudyService(store storage.Store, analyzer aiclient.Analyzer, cfg *config.Config, log *zap.Logger) StudyService {
	return &studyService{
		store:    store,
		analyzer: analyzer,
		compiler: report.NewCompiler(),
		cfg:      cfg,
		log:      log,
	}
}

func (s *studyService) UploadImages(ctx context.Context, files []FileUpload) (*UploadSummary, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}
	if len(files) > s.cfg.Storage.MaxFilesPerRequest {
		return nil, fmt.Errorf("%w: too many files (%d), maximum is %d",
			domain.ErrValidation, len(files), s.cfg.Storage.MaxFilesPerRequest)
	}

	summary := &UploadSummary{}
	for _, f := range files {
		img, err := s.processFile(ctx, f)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", f.Filename, err))
			continue
		}

		summary.Uploaded++
		if img.IsDicom {
			summary.DicomCount++
		} else {
			summary.ImageCount++
		}
		summary.Images = append(summary.Images, *img)
	}

	s.log.Info("Upload processed",
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("failed", summary.Failed),
		zap.Int("dicom", summary.DicomCount),
		zap.Int("regular", summary.ImageCount))

	return summary, nil
}

func (s *studyService) processFile(ctx context.Context, f FileUpload) (*domain.UploadedImage, error) {
	res := validator.Validate(f.Filename, int64(len(f.Data)))
	if !res.Valid {
		return nil, fmt.Errorf("%s", res.Reason)
	}

	saved, err := s.store.Save(ctx, f.Filename, f.Data)
	if err != nil {
		return nil, err
	}

	img := &domain.UploadedImage{
		ID:           uuid.New().String(),
		OriginalName: f.Filename,
		StoredName:   saved.StoredName,
		StoragePath:  saved.Path,
		FileType:     res.FileType,
		Size:         int64(len(f.Data)),
		UploadedAt:   time.Now(),
	}

	// The byte-level sniff wins over the extension: a ".png" that carries
	// a DICOM preamble is handled as DICOM.
	if dicomdata.IsDicom(f.Data) {
		img.IsDicom = true
		img.FileType = domain.FileTypeDicom
		meta := dicomdata.ExtractMetadata(f.Data)
		img.DicomMetadata = &meta

		if frame, ok := dicomdata.ExtractFrame(f.Data); ok {
			if payload, err := imaging.EncodeBase64PNG(frame); err == nil {
				img.Base64Payload = payload
			}
		}
	} else {
		img.Base64Payload = imaging.Normalize(f.Data)
	}

	img.Processed = true
	return img, nil
}

func (s *studyService) AnalyzeImages(ctx context.Context, images []domain.UploadedImage, systemPrompt string, observer pipeline.Observer) (*AnalysisSummary, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images provided", domain.ErrValidation)
	}

	analyzable := 0
	for _, img := range images {
		if img.Base64Payload != "" {
			analyzable++
		}
	}
	if analyzable == 0 {
		return nil, fmt.Errorf("%w: none of the provided images carry an analyzable payload", domain.ErrValidation)
	}

	batches := pipeline.BuildBatches(images, s.cfg.Pipeline.BatchSize)
	runner := pipeline.NewRunner(s.analyzer, s.cfg.Pipeline.InterBatchDelay, s.log)
	runner.Run(ctx, batches, systemPrompt, observer)

	return &AnalysisSummary{
		Batches:           batches,
		TotalBatches:      len(batches),
		SuccessfulBatches: len(pipeline.SuccessfulBatches(batches)),
		FailedBatches:     len(pipeline.FailedBatches(batches)),
		Status:            pipeline.Outcome(batches).WireState(),
	}, nil
}

func (s *studyService) GenerateReport(ctx context.Context, images []domain.UploadedImage, patient *domain.PatientInfo, systemPrompt string) (*ReportSummary, error) {
	analysis, err := s.AnalyzeImages(ctx, images, systemPrompt, nil)
	if err != nil {
		return nil, err
	}

	rep := s.compiler.Compile(analysis.Batches, patient)

	rate := 0
	if analysis.TotalBatches > 0 {
		rate = analysis.SuccessfulBatches * 100 / analysis.TotalBatches
	}

	s.log.Info("Report generated",
		zap.String("report_id", rep.ID),
		zap.Int("total_batches", analysis.TotalBatches),
		zap.Int("success_rate", rate))

	return &ReportSummary{
		Report:            rep,
		TotalBatches:      analysis.TotalBatches,
		SuccessfulBatches: analysis.SuccessfulBatches,
		FailedBatches:     analysis.FailedBatches,
		SuccessRate:       rate,
	}, nil
}
