// Package iorepo keeps datasets, sectors, sync attempts and decisions in
// global PostgreSQL tables managed by GORM.
package iorepo

import (
	"context"
	"errors"
	"time"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo implements sector.Repository and store.Datasets.
type Repo struct {
	db *gorm.DB
}

var (
	_ sector.Repository = (*Repo)(nil)
	_ store.Datasets    = (*Repo)(nil)
)

// New creates a Repo on top of a GORM connection.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// first reads one record and translates a missing record into
// store.ErrNotFound.
func first(tx *gorm.DB, dest any, table string) error {
	err := tx.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return QueryError(table, err)
	}
	return nil
}

func (r *Repo) Dataset(ctx context.Context, key int) (*model.Dataset, error) {
	var row schema.Dataset
	tx := r.db.WithContext(ctx).Where("key = ?", key)
	if err := first(tx, &row, row.TableName()); err != nil {
		return nil, err
	}
	return fromDatasetRow(&row), nil
}

func (r *Repo) Datasets(ctx context.Context) ([]*model.Dataset, error) {
	var rows []schema.Dataset
	err := r.db.WithContext(ctx).Order("key").Find(&rows).Error
	if err != nil {
		return nil, QueryError("datasets", err)
	}
	res := make([]*model.Dataset, len(rows))
	for i := range rows {
		res[i] = fromDatasetRow(&rows[i])
	}
	return res, nil
}

func (r *Repo) SaveDataset(ctx context.Context, d *model.Dataset) error {
	row := toDatasetRow(d)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return WriteError(row.TableName(), d.Key, err)
	}
	return nil
}

func (r *Repo) Sector(ctx context.Context, key int) (*sector.Sector, error) {
	var row schema.Sector
	tx := r.db.WithContext(ctx).Where("key = ?", key)
	if err := first(tx, &row, row.TableName()); err != nil {
		return nil, err
	}
	return fromSectorRow(&row), nil
}

func (r *Repo) Sectors(ctx context.Context) ([]*sector.Sector, error) {
	var rows []schema.Sector
	if err := r.db.WithContext(ctx).Order("key").Find(&rows).Error; err != nil {
		return nil, QueryError("sectors", err)
	}
	return sectors(rows), nil
}

func sectors(rows []schema.Sector) []*sector.Sector {
	res := make([]*sector.Sector, len(rows))
	for i := range rows {
		res[i] = fromSectorRow(&rows[i])
	}
	return res
}

// SaveSector inserts or updates a sector. Sync attempt counter and
// creation time of an existing sector are kept.
func (r *Repo) SaveSector(ctx context.Context, s *sector.Sector) error {
	row := toSectorRow(s)
	row.SyncAttempt = 0
	row.CreatedAt = time.Time{}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject_dataset_key", "subject_id", "target_dataset_key",
				"target_id", "mode", "note", "broken", "modified_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return WriteError(row.TableName(), s.Key, err)
	}
	return nil
}

func (r *Repo) updateSector(
	ctx context.Context,
	key int,
	column string,
	value any,
) error {
	res := r.db.WithContext(ctx).
		Model(&schema.Sector{}).
		Where("key = ?", key).
		Update(column, value)
	if res.Error != nil {
		return WriteError("sectors", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repo) SetBroken(ctx context.Context, key int, broken bool) error {
	return r.updateSector(ctx, key, "broken", broken)
}

func (r *Repo) SetSyncAttempt(ctx context.Context, key, attempt int) error {
	return r.updateSector(ctx, key, "sync_attempt", attempt)
}

func (r *Repo) DeleteSector(ctx context.Context, key int) error {
	res := r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&schema.Sector{})
	if res.Error != nil {
		return WriteError("sectors", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repo) SectorsTargeting(
	ctx context.Context,
	datasetKey int,
	usageID string,
) ([]*sector.Sector, error) {
	var rows []schema.Sector
	err := r.db.WithContext(ctx).
		Where("target_dataset_key = ? AND target_id = ?", datasetKey, usageID).
		Order("key").
		Find(&rows).Error
	if err != nil {
		return nil, QueryError("sectors", err)
	}
	return sectors(rows), nil
}

// CreateImport stores a new attempt numbered after the last attempt of
// the sector.
func (r *Repo) CreateImport(ctx context.Context, si *sector.SectorImport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&schema.SectorImport{}).
			Where("sector_key = ?", si.SectorKey).
			Select("COALESCE(MAX(attempt), 0)").
			Scan(&last).Error
		if err != nil {
			return QueryError("sector_imports", err)
		}

		si.Attempt = last + 1
		row, err := toImportRow(si)
		if err != nil {
			return WriteError(row.TableName(), si.SectorKey, err)
		}
		if err = tx.Create(&row).Error; err != nil {
			return WriteError(row.TableName(), si.SectorKey, err)
		}
		si.ID = row.ID
		return nil
	})
}

func (r *Repo) UpdateImport(ctx context.Context, si *sector.SectorImport) error {
	row, err := toImportRow(si)
	if err != nil {
		return WriteError(row.TableName(), si.ID, err)
	}
	res := r.db.WithContext(ctx).
		Model(&schema.SectorImport{}).
		Where("id = ?", si.ID).
		Select("*").
		Omit("id").
		Updates(&row)
	if res.Error != nil {
		return WriteError(row.TableName(), si.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repo) importWhere(
	ctx context.Context,
	query string,
	args ...any,
) (*sector.SectorImport, error) {
	var row schema.SectorImport
	tx := r.db.WithContext(ctx).Where(query, args...).Order("attempt DESC")
	if err := first(tx, &row, row.TableName()); err != nil {
		return nil, err
	}
	res, err := fromImportRow(&row)
	if err != nil {
		return nil, QueryError(row.TableName(), err)
	}
	return res, nil
}

func (r *Repo) LastImport(
	ctx context.Context,
	sectorKey int,
) (*sector.SectorImport, error) {
	return r.importWhere(ctx, "sector_key = ?", sectorKey)
}

func (r *Repo) Import(
	ctx context.Context,
	sectorKey, attempt int,
) (*sector.SectorImport, error) {
	return r.importWhere(ctx,
		"sector_key = ? AND attempt = ?", sectorKey, attempt)
}

func (r *Repo) Imports(
	ctx context.Context,
	sectorKey int,
) ([]*sector.SectorImport, error) {
	var rows []schema.SectorImport
	err := r.db.WithContext(ctx).
		Where("sector_key = ?", sectorKey).
		Order("attempt DESC").
		Find(&rows).Error
	if err != nil {
		return nil, QueryError("sector_imports", err)
	}

	res := make([]*sector.SectorImport, 0, len(rows))
	for i := range rows {
		si, err := fromImportRow(&rows[i])
		if err != nil {
			return nil, QueryError("sector_imports", err)
		}
		res = append(res, si)
	}
	return res, nil
}

func (r *Repo) Decisions(
	ctx context.Context,
	datasetKey int,
) ([]sector.Decision, error) {
	var rows []schema.Decision
	err := r.db.WithContext(ctx).
		Where("dataset_key = ?", datasetKey).
		Order("subject_id").
		Find(&rows).Error
	if err != nil {
		return nil, QueryError("decisions", err)
	}
	res := make([]sector.Decision, len(rows))
	for i := range rows {
		res[i] = fromDecisionRow(&rows[i])
	}
	return res, nil
}

func (r *Repo) SaveDecision(ctx context.Context, d sector.Decision) error {
	row := toDecisionRow(&d)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return WriteError(row.TableName(), d.SubjectID, err)
	}
	return nil
}
