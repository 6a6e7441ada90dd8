package dicomdata

import (
	"image"
	"testing"
)

func TestExtractMetadata_UnparseableFallsBackToPlaceholder(t *testing.T) {
	// DICM magic present but no valid dataset behind it.
	meta := ExtractMetadata(dicomBuffer(200))

	if meta.PatientName != "Unknown" {
		t.Errorf("PatientName = %q, want Unknown", meta.PatientName)
	}
	if meta.PatientID != "AUTO-GENERATED" {
		t.Errorf("PatientID = %q, want AUTO-GENERATED", meta.PatientID)
	}
	if meta.Modality != "Unknown" {
		t.Errorf("Modality = %q, want Unknown", meta.Modality)
	}
	if len(meta.StudyDate) != 8 {
		t.Errorf("StudyDate = %q, want DICOM DA format (YYYYMMDD)", meta.StudyDate)
	}
	if len(meta.StudyTime) != 6 {
		t.Errorf("StudyTime = %q, want DICOM TM format (HHMMSS)", meta.StudyTime)
	}
}

func TestExtractFrame_UnparseableFallsBackToZeroFrame(t *testing.T) {
	img, ok := ExtractFrame(dicomBuffer(200))
	if ok {
		t.Fatal("garbage buffer reported as real pixel data")
	}

	bounds := img.Bounds()
	if bounds.Dx() != 512 || bounds.Dy() != 512 {
		t.Fatalf("fallback frame is %dx%d, want 512x512", bounds.Dx(), bounds.Dy())
	}

	gray, isGray := img.(*image.Gray)
	if !isGray {
		t.Fatalf("fallback frame is %T, want *image.Gray", img)
	}
	for _, p := range gray.Pix {
		if p != 0 {
			t.Fatal("fallback frame contains non-zero pixels")
		}
	}
}
