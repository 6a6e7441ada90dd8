package report

import (
	"strings"
	"testing"
	"time"

	"medvision/internal/domain"
)

var frozen = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func frozenCompiler() *Compiler {
	return &Compiler{Now: func() time.Time { return frozen }}
}

func completedBatch(index, images int, findings string) domain.ImageBatch {
	return domain.ImageBatch{
		Index:    index,
		Images:   make([]domain.UploadedImage, images),
		Status:   domain.BatchCompleted,
		Response: `{"findings":"` + findings + `","recommendation":"r","confidence":0.85}`,
	}
}

func failedBatch(index, images int, msg string) domain.ImageBatch {
	return domain.ImageBatch{
		Index:  index,
		Images: make([]domain.UploadedImage, images),
		Status: domain.BatchFailed,
		Error:  msg,
	}
}

func TestCompile_FullReport(t *testing.T) {
	batches := []domain.ImageBatch{
		completedBatch(1, 20, "clear lung fields"),
		failedBatch(2, 20, "upstream timeout"),
		completedBatch(3, 5, "minor artifacts"),
	}
	patient := &domain.PatientInfo{Name: "DOE^JANE", ID: "P-001"}

	rep := frozenCompiler().Compile(batches, patient)

	if rep.TotalImages != 45 {
		t.Errorf("TotalImages = %d, want 45", rep.TotalImages)
	}
	if rep.Status != domain.StateCompleted {
		t.Errorf("Status = %q, want completed", rep.Status)
	}
	if rep.GeneratedBy != GeneratorTag {
		t.Errorf("GeneratedBy = %q", rep.GeneratedBy)
	}
	if !rep.CreatedAt.Equal(frozen) || !rep.CompletedAt.Equal(frozen) {
		t.Error("timestamps do not match frozen clock")
	}

	text := rep.Findings
	for _, want := range []string{
		"MEDICAL IMAGE ANALYSIS REPORT",
		"PATIENT INFORMATION",
		"Name: DOE^JANE",
		"ID: P-001",
		"Total images analyzed: 45",
		"Successful batches: 2",
		"Failed batches: 1",
		"clear lung fields",
		"minor artifacts",
		"PROCESSING ERRORS",
		"- Batch 2: upstream timeout",
		Disclaimer,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Two findings sections, in batch order.
	if strings.Index(text, "clear lung fields") > strings.Index(text, "minor artifacts") {
		t.Error("findings are not in batch order")
	}
	// Absent patient fields are not rendered.
	if strings.Contains(text, "Study Date:") || strings.Contains(text, "Modality:") {
		t.Error("empty patient fields were rendered")
	}
}

func TestCompile_DisclaimerAlwaysPresent(t *testing.T) {
	tests := []struct {
		name    string
		batches []domain.ImageBatch
	}{
		{"no batches", nil},
		{"all failed", []domain.ImageBatch{failedBatch(1, 20, "x"), failedBatch(2, 20, "y")}},
		{"all succeeded", []domain.ImageBatch{completedBatch(1, 20, "fine")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := frozenCompiler().Compile(tt.batches, nil)
			if !strings.Contains(rep.Findings, Disclaimer) {
				t.Error("report does not contain the disclaimer verbatim")
			}
		})
	}
}

func TestCompile_NoPatientBlockWithoutPatient(t *testing.T) {
	rep := frozenCompiler().Compile([]domain.ImageBatch{completedBatch(1, 1, "ok")}, nil)
	if strings.Contains(rep.Findings, "PATIENT INFORMATION") {
		t.Error("patient block rendered without patient info")
	}

	rep = frozenCompiler().Compile([]domain.ImageBatch{completedBatch(1, 1, "ok")}, &domain.PatientInfo{})
	if strings.Contains(rep.Findings, "PATIENT INFORMATION") {
		t.Error("patient block rendered for all-empty patient info")
	}
}

// A stored response that does not parse produces an inline error line for
// that batch and the rest of the report is still compiled.
func TestCompile_MalformedStoredResponse(t *testing.T) {
	batches := []domain.ImageBatch{
		{Index: 1, Images: make([]domain.UploadedImage, 2), Status: domain.BatchCompleted, Response: "{not json"},
		completedBatch(2, 2, "still compiled"),
	}

	rep := frozenCompiler().Compile(batches, nil)

	if !strings.Contains(rep.Findings, "unable to read stored analysis for batch 1") {
		t.Error("missing inline error line for the malformed batch")
	}
	if !strings.Contains(rep.Findings, "still compiled") {
		t.Error("subsequent batch findings were dropped")
	}
}

func TestCompile_NoFailuresOmitsErrorBlock(t *testing.T) {
	rep := frozenCompiler().Compile([]domain.ImageBatch{completedBatch(1, 3, "ok")}, nil)
	if strings.Contains(rep.Findings, "PROCESSING ERRORS") {
		t.Error("error block rendered for a clean run")
	}
}

func TestCompile_DeterministicUnderFrozenClock(t *testing.T) {
	batches := []domain.ImageBatch{completedBatch(1, 3, "ok"), failedBatch(2, 3, "x")}

	a := frozenCompiler().Compile(batches, nil)
	b := frozenCompiler().Compile(batches, nil)

	if a.Findings != b.Findings {
		t.Error("identical inputs produced different report text")
	}
}
