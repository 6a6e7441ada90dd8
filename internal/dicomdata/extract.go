package dicomdata

import (
	"bytes"
	"image"
	"strings"
	"time"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"medvision/internal/domain"
)

const (
	unknownValue = "Unknown"
	generatedID  = "AUTO-GENERATED"
	fallbackSize = 512
)

// ExtractMetadata reads patient and study tags from a DICOM header. Files
// that cannot be parsed, and tags that are absent, degrade to the constant
// placeholder values the rest of the pipeline has always relied on.
func ExtractMetadata(buf []byte) domain.DicomMetadata {
	now := time.Now()
	meta := domain.DicomMetadata{
		PatientName: unknownValue,
		PatientID:   generatedID,
		StudyDate:   now.Format("20060102"),
		StudyTime:   now.Format("150405"),
		Modality:    unknownValue,
	}

	ds, err := dicom.Parse(bytes.NewReader(buf), int64(len(buf)), nil)
	if err != nil {
		return meta
	}

	if v := stringTag(&ds, tag.PatientName); v != "" {
		meta.PatientName = v
	}
	if v := stringTag(&ds, tag.PatientID); v != "" {
		meta.PatientID = v
	}
	if v := stringTag(&ds, tag.StudyDate); v != "" {
		meta.StudyDate = v
	}
	if v := stringTag(&ds, tag.StudyTime); v != "" {
		meta.StudyTime = v
	}
	if v := stringTag(&ds, tag.Modality); v != "" {
		meta.Modality = v
	}

	return meta
}

// ExtractFrame renders the first pixel frame of a DICOM file. The second
// return value reports whether real pixel data was decoded; on any failure
// the fixed 512x512 all-zero grayscale frame is returned instead.
func ExtractFrame(buf []byte) (image.Image, bool) {
	ds, err := dicom.Parse(bytes.NewReader(buf), int64(len(buf)), nil)
	if err != nil {
		return zeroFrame(), false
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return zeroFrame(), false
	}

	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return zeroFrame(), false
	}

	img, err := info.Frames[0].GetImage()
	if err != nil {
		return zeroFrame(), false
	}
	return img, true
}

func zeroFrame() image.Image {
	return image.NewGray(image.Rect(0, 0, fallbackSize, fallbackSize))
}

func stringTag(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
