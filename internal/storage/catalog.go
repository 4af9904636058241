package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is the catalog row of a stored run.
type RunRecord struct {
	ID             string    `gorm:"primaryKey"`
	CreatedAt      time.Time `gorm:"index"`
	Size           int       `gorm:"index"`
	Steps          int
	Beta           float64 `gorm:"index"`
	Coupling       float64
	Seed           int64
	Init           string
	FinalEnergy    float64
	Magnetization  float64
	AcceptanceRate float64
}

// Metadata converts the row back to run metadata. Per-run metrics are only
// kept in the run directory.
func (r RunRecord) Metadata() RunMetadata {
	return RunMetadata{
		ID:             r.ID,
		Timestamp:      r.CreatedAt,
		Size:           r.Size,
		Steps:          r.Steps,
		Beta:           r.Beta,
		Coupling:       r.Coupling,
		Seed:           r.Seed,
		Init:           r.Init,
		FinalEnergy:    r.FinalEnergy,
		Magnetization:  r.Magnetization,
		AcceptanceRate: r.AcceptanceRate,
	}
}

// Filter narrows catalog queries. Nil bounds and a zero size match everything.
type Filter struct {
	BetaMin *float64
	BetaMax *float64
	Size    int
	Limit   int
}

// Match applies the filter bounds to meta. Limit is ignored.
func (f Filter) Match(meta RunMetadata) bool {
	if f.BetaMin != nil && meta.Beta < *f.BetaMin {
		return false
	}
	if f.BetaMax != nil && meta.Beta > *f.BetaMax {
		return false
	}
	return f.Size <= 0 || meta.Size == f.Size
}

// Catalog indexes runs in a SQLite database so they can be queried by
// parameters without scanning run directories.
type Catalog struct {
	db *gorm.DB
}

// OpenCatalog opens (or creates) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Record creates or updates the catalog row for meta.
func (c *Catalog) Record(meta RunMetadata) error {
	rec := RunRecord{
		ID:             meta.ID,
		CreatedAt:      meta.Timestamp,
		Size:           meta.Size,
		Steps:          meta.Steps,
		Beta:           meta.Beta,
		Coupling:       meta.Coupling,
		Seed:           meta.Seed,
		Init:           meta.Init,
		FinalEnergy:    meta.FinalEnergy,
		Magnetization:  meta.Magnetization,
		AcceptanceRate: meta.AcceptanceRate,
	}
	return c.db.Save(&rec).Error
}

// Get returns the row for id or ErrRunNotFound.
func (c *Catalog) Get(id string) (*RunRecord, error) {
	var rec RunRecord
	err := c.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Find returns matching rows, newest first.
func (c *Catalog) Find(f Filter) ([]RunRecord, error) {
	q := c.db.Model(&RunRecord{})
	if f.BetaMin != nil {
		q = q.Where("beta >= ?", *f.BetaMin)
	}
	if f.BetaMax != nil {
		q = q.Where("beta <= ?", *f.BetaMax)
	}
	if f.Size > 0 {
		q = q.Where("size = ?", f.Size)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var recs []RunRecord
	err := q.Order("created_at desc").Find(&recs).Error
	return recs, err
}

func (c *Catalog) Delete(id string) error {
	res := c.db.Where("id = ?", id).Delete(&RunRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
