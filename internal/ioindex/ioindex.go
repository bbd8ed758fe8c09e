// Package ioindex keeps the flat search index of usage labels up to date
// after sector syncs.
package ioindex

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/sector"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Index writes usage labels into the usage_search_index table.
type Index struct {
	db *gorm.DB
}

var _ sector.Indexer = (*Index)(nil)

// New creates an Index on top of a GORM connection.
func New(db *gorm.DB) *Index {
	return &Index{db: db}
}

func (idx *Index) Upsert(
	ctx context.Context,
	datasetKey int,
	usages []*model.Usage,
) error {
	if len(usages) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]schema.UsageSearchIndex, len(usages))
	for i, v := range usages {
		rows[i] = schema.UsageSearchIndex{
			DatasetKey: datasetKey,
			UsageID:    v.ID,
			Label:      v.Label(),
			Canonical:  v.Name.CanonicalName(),
			Rank:       int(v.Name.Rank),
			Status:     int(v.Status),
			SectorKey:  v.SectorKey,
			UpdatedAt:  now,
		}
	}

	err := idx.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return UpsertError(datasetKey, len(rows), err)
	}
	return nil
}

func (idx *Index) Delete(ctx context.Context, datasetKey int, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := idx.db.WithContext(ctx).
		Where("dataset_key = ? AND usage_id IN ?", datasetKey, ids).
		Delete(&schema.UsageSearchIndex{}).Error
	if err != nil {
		return DeleteError(datasetKey, len(ids), err)
	}
	return nil
}

// Noop is an Indexer that ignores all calls. It is used when indexing is
// disabled in configuration.
type Noop struct{}

var _ sector.Indexer = Noop{}

func (Noop) Upsert(context.Context, int, []*model.Usage) error { return nil }

func (Noop) Delete(context.Context, int, []string) error { return nil }

func UpsertError(datasetKey, n int, err error) error {
	msg := "Cannot index %d usages of dataset %d"
	vars := []any{n, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.IndexUpsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: upsert %d usages of dataset %d: %w",
			fn, n, datasetKey, err),
	}
}

func DeleteError(datasetKey, n int, err error) error {
	msg := "Cannot remove %d usages of dataset %d from index"
	vars := []any{n, datasetKey}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.IndexDeleteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: delete %d usages of dataset %d: %w",
			fn, n, datasetKey, err),
	}
}
