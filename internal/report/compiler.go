package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medvision/internal/aiclient"
	"medvision/internal/domain"
	"medvision/internal/pipeline"
)

// Disclaimer closes every report verbatim, whatever the outcome of the run.
const Disclaimer = "This report was generated automatically with the assistance of an AI model. " +
	"It is not a medical diagnosis. All findings must be reviewed and confirmed by a " +
	"licensed radiologist or physician before any clinical decision is made."

// GeneratorTag identifies the producer of a report.
const GeneratorTag = "medvision"

// Compiler renders batch results into a single text report. Now is
// injectable so tests can freeze the clock; it defaults to time.Now.
type Compiler struct {
	Now func() time.Time
}

func NewCompiler() *Compiler {
	return &Compiler{Now: time.Now}
}

// Compile concatenates every successful batch's findings, lists every
// failure, and wraps the result with a patient header, a study summary and
// the closing disclaimer. A batch whose stored response does not parse gets
// an inline error line; it never aborts the report.
func (c *Compiler) Compile(batches []domain.ImageBatch, patient *domain.PatientInfo) domain.DiagnosticReport {
	now := c.Now()
	successful := pipeline.SuccessfulBatches(batches)
	failed := pipeline.FailedBatches(batches)
	totalImages := pipeline.CountImages(batches)

	var b strings.Builder
	b.WriteString("MEDICAL IMAGE ANALYSIS REPORT\n")
	b.WriteString("=============================\n\n")

	writePatientBlock(&b, patient)

	b.WriteString("STUDY SUMMARY\n")
	fmt.Fprintf(&b, "Total images analyzed: %d\n", totalImages)
	fmt.Fprintf(&b, "Successful batches: %d\n", len(successful))
	fmt.Fprintf(&b, "Failed batches: %d\n", len(failed))
	fmt.Fprintf(&b, "Report date: %s\n\n", now.Format("2006-01-02"))

	b.WriteString("CONSOLIDATED FINDINGS\n")
	if len(successful) == 0 {
		b.WriteString("No findings are available for this study.\n")
	}
	for _, batch := range successful {
		fmt.Fprintf(&b, "\nBatch %d (%d images):\n", batch.Index, len(batch.Images))

		var result domain.AnalysisResult
		if err := json.Unmarshal([]byte(batch.Response), &result); err != nil {
			fmt.Fprintf(&b, "[unable to read stored analysis for batch %d: %v]\n", batch.Index, err)
			continue
		}
		b.WriteString(strings.TrimSpace(result.Findings))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(failed) > 0 {
		b.WriteString("PROCESSING ERRORS\n")
		for _, batch := range failed {
			fmt.Fprintf(&b, "- Batch %d: %s\n", batch.Index, batch.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString("DISCLAIMER\n")
	b.WriteString(Disclaimer)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Generated by %s at %s\n", GeneratorTag, now.Format(time.RFC3339))

	return domain.DiagnosticReport{
		ID:             uuid.New().String(),
		Patient:        patient,
		TotalImages:    totalImages,
		Batches:        batches,
		Status:         pipeline.Outcome(batches).WireState(),
		Findings:       b.String(),
		Recommendation: aiclient.FixedRecommendation,
		CreatedAt:      now,
		CompletedAt:    now,
		GeneratedBy:    GeneratorTag,
	}
}

func writePatientBlock(b *strings.Builder, patient *domain.PatientInfo) {
	if patient == nil {
		return
	}

	fields := []struct {
		label string
		value string
	}{
		{"Name", patient.Name},
		{"ID", patient.ID},
		{"Study Date", patient.StudyDate},
		{"Modality", patient.Modality},
	}

	any := false
	for _, f := range fields {
		if f.value != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("PATIENT INFORMATION\n")
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(b, "%s: %s\n", f.label, f.value)
		}
	}
	b.WriteString("\n")
}
