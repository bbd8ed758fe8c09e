// Package store declares the contracts of the relational storage used by
// the importer and the sector synchronizer. Every dataset owns a partition
// of names, usages, references and attachments.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnames/gncat/pkg/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Table string
	Key   string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict in %s for key %s: %v", e.Table, e.Key, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsConflict checks if err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// Partitions creates new dataset partitions for full (re)imports.
type Partitions interface {
	// NewPartition starts writing a new partition of a dataset. Data of the
	// new partition stays invisible until Commit.
	NewPartition(ctx context.Context, datasetKey int) (Partition, error)
}

// Partition is a dataset partition that is being written. Either Commit or
// Rollback must be called.
type Partition interface {
	DatasetKey() int

	// NextKeys reserves n durable keys and returns the first of them. Keys
	// first..first+n-1 belong to the caller.
	NextKeys(ctx context.Context, n int) (int64, error)

	AddReferences(ctx context.Context, refs []model.Reference) error
	AddNames(ctx context.Context, names []model.Name) error
	AddUsages(ctx context.Context, usages []model.Usage) error
	AddAttachments(ctx context.Context, atts []model.UsageAttachments) error

	// Commit atomically replaces the previous partition of the dataset.
	Commit(ctx context.Context) error

	// Rollback discards everything written so far. The previous partition
	// stays untouched.
	Rollback(ctx context.Context) error
}

// Classification gives node-level access to the usages of datasets. All
// write methods are atomic per usage: either the usage with its name and
// attachments is written completely or nothing is.
type Classification interface {
	// Usage returns a usage by ID or ErrNotFound.
	Usage(ctx context.Context, datasetKey int, id string) (*model.Usage, error)

	// Children returns child taxa ordered by insertion order.
	Children(ctx context.Context, datasetKey int, id string) ([]*model.Usage, error)

	// Synonyms returns synonyms of a taxon ordered by insertion order.
	Synonyms(ctx context.Context, datasetKey int, id string) ([]*model.Usage, error)

	// Attachments returns the attachments of a usage.
	Attachments(ctx context.Context, datasetKey int, id string) (model.Attachments, error)

	// SectorUsages returns all usages of a dataset created by a sector.
	SectorUsages(ctx context.Context, datasetKey, sectorKey int) ([]*model.Usage, error)

	// ListUsages returns all usages of a dataset.
	ListUsages(ctx context.Context, datasetKey int) ([]*model.Usage, error)

	// CreateUsage inserts a usage with its name and attachments and
	// assigns the durable keys. A usage with an existing ID is a conflict.
	CreateUsage(ctx context.Context, u *model.Usage, att model.Attachments) error

	// UpdateUsage replaces a usage, its name and its attachments.
	UpdateUsage(ctx context.Context, u *model.Usage, att model.Attachments) error

	// AddAttachments appends attachments to an existing usage.
	AddAttachments(ctx context.Context, datasetKey int, id string, att model.Attachments) error

	// DeleteUsage removes a usage with its name and attachments.
	DeleteUsage(ctx context.Context, datasetKey int, id string) error

	// CountForeignChildren counts children and synonyms of a usage that do
	// not belong to the given sector.
	CountForeignChildren(ctx context.Context, datasetKey int, id string, sectorKey int) (int, error)

	// Count returns the number of usages and names of a dataset.
	Count(ctx context.Context, datasetKey int) (usages, names int, err error)
}

// Datasets keeps dataset metadata.
type Datasets interface {
	Dataset(ctx context.Context, key int) (*model.Dataset, error)
	Datasets(ctx context.Context) ([]*model.Dataset, error)
	SaveDataset(ctx context.Context, d *model.Dataset) error
}
