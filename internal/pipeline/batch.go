package pipeline

import (
	"time"

	"github.com/google/uuid"

	"medvision/internal/domain"
)

// DefaultBatchSize is the number of images sent in one AI request.
const DefaultBatchSize = 20

// BuildBatches slices images into fixed-size windows in input order. The
// last batch may be shorter. Batch indexes are 1-based and sequential.
func BuildBatches(images []domain.UploadedImage, size int) []domain.ImageBatch {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches []domain.ImageBatch
	for start := 0; start < len(images); start += size {
		end := start + size
		if end > len(images) {
			end = len(images)
		}
		batches = append(batches, domain.ImageBatch{
			ID:        uuid.New().String(),
			Index:     len(batches) + 1,
			Images:    images[start:end],
			Status:    domain.BatchPending,
			CreatedAt: time.Now(),
		})
	}
	return batches
}
