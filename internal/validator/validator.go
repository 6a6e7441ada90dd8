package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"medvision/internal/domain"
)

// MaxFileSize is the upload hard cap (100 MiB).
const MaxFileSize = 100 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".dcm":   {},
	".dicom": {},
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".bmp":   {},
	".tiff":  {},
	".tif":   {},
}

type Result struct {
	Valid    bool
	Reason   string
	FileType domain.FileType
}

// Validate checks an uploaded file's extension and size. On rejection the
// returned FileType is a default (png) and carries no meaning.
func Validate(filename string, size int64) Result {
	ext := strings.ToLower(filepath.Ext(filename))

	if _, ok := allowedExtensions[ext]; !ok {
		return Result{
			Valid:    false,
			Reason:   fmt.Sprintf("unsupported file extension %q", ext),
			FileType: domain.FileTypePNG,
		}
	}

	if size > MaxFileSize {
		return Result{
			Valid:    false,
			Reason:   fmt.Sprintf("file exceeds maximum size of %d bytes", int64(MaxFileSize)),
			FileType: domain.FileTypePNG,
		}
	}

	return Result{Valid: true, FileType: Classify(filename)}
}

// Classify maps an extension to a file type. Precedence:
// DICOM > JPEG > PNG > BMP > TIFF.
func Classify(filename string) domain.FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".dcm", ".dicom":
		return domain.FileTypeDicom
	case ".jpg", ".jpeg":
		return domain.FileTypeJPEG
	case ".png":
		return domain.FileTypePNG
	case ".bmp":
		return domain.FileTypeBMP
	case ".tiff", ".tif":
		return domain.FileTypeTIFF
	default:
		return domain.FileTypePNG
	}
}
