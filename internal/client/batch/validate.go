// Package batch holds the pure checks and arithmetic applied to a file
// selection before any network call is made.
package batch

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

// MaxBatchBytes is the ceiling on the summed declared size of a batch.
const MaxBatchBytes int64 = 100 * 1024 * 1024

// TotalBytes sums the declared sizes of files.
func TotalBytes(files []models.File) int64 {
	return lo.SumBy(files, func(f models.File) int64 { return f.Size })
}

// Validate checks files against count and size policy. Every violated rule
// is reported.
func Validate(files []models.File) models.ValidationResult {
	errs := []string{}
	total := TotalBytes(files)

	if len(files) == 0 {
		errs = append(errs, "Select at least one file.")
	}

	if total > MaxBatchBytes {
		errs = append(errs, fmt.Sprintf("Total selected size exceeds %s.", humanize.IBytes(uint64(MaxBatchBytes))))
	}

	return models.ValidationResult{
		Valid:      len(errs) == 0,
		TotalBytes: total,
		Errors:     errs,
	}
}

// Check runs Validate and turns a failed result into an error wrapping
// common.ErrEmptyBatch or common.ErrBatchTooLarge.
func Check(files []models.File) error {
	res := Validate(files)
	if res.Valid {
		return nil
	}
	sentinel := common.ErrBatchTooLarge
	if len(files) == 0 {
		sentinel = common.ErrEmptyBatch
	}
	errs := lo.Map(res.Errors, func(msg string, _ int) error { return errors.New(msg) })
	return fmt.Errorf("%w: %w", sentinel, errors.Join(errs...))
}
