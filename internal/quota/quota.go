// Package quota provides storage quota estimators. The capability is
// resolved once at construction: callers get either a directory-backed
// estimator or the null object, never a runtime feature probe.
package quota

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/drake/gamevault/internal/domain"
)

// Null reports zero usage and zero total. Used when no cache directory is
// configured or quota reporting is disabled.
type Null struct{}

func (Null) Estimate(context.Context) (domain.QuotaInfo, error) {
	return domain.QuotaInfo{}, nil
}

// DirEstimator sizes a cache directory against a configured byte budget.
type DirEstimator struct {
	dir    string
	budget int64
}

// NewDirEstimator creates an estimator for dir with the given budget.
func NewDirEstimator(dir string, budgetBytes int64) *DirEstimator {
	return &DirEstimator{dir: dir, budget: budgetBytes}
}

// Estimate walks the cache directory and sums file sizes. Failures return
// ErrQuotaUnavailable; callers degrade to zero figures.
func (e *DirEstimator) Estimate(ctx context.Context) (domain.QuotaInfo, error) {
	var used int64
	err := filepath.WalkDir(e.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		used += info.Size()
		return nil
	})
	if err != nil {
		return domain.QuotaInfo{}, domain.ErrQuotaUnavailable
	}
	return domain.QuotaInfo{UsedBytes: used, TotalBytes: e.budget}, nil
}
