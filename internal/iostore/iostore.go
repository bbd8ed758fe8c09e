// Package iostore implements the storage contracts of the importer and the
// sector synchronizer on PostgreSQL. Dataset tables are LIST-partitioned
// by dataset key: imports fill a staging table per dataset and swap it in
// on commit, syncs edit partitions of managed catalogues row by row.
package iostore

import (
	"context"
	"fmt"
	"sync"

	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// keyLockID serializes reservations of durable keys.
const keyLockID = 0x67_6e_63_61_74

// Store keeps names, usages and attachments in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	// partitions caches datasets whose partitions are known to exist.
	partitions sync.Map
}

var (
	_ store.Partitions     = (*Store)(nil)
	_ store.Classification = (*Store)(nil)
)

// New creates a Store on top of a connected pool.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, NotConnectedError()
	}
	return &Store{pool: pool}, nil
}

// reserveKeys takes n keys from the sequence of durable keys and returns
// the first one. Concurrent reservations are serialized by an advisory
// lock held until the end of tx, so every block is contiguous.
func reserveKeys(ctx context.Context, tx pgx.Tx, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if _, err := tx.Exec(ctx,
		"SELECT pg_advisory_xact_lock($1)", int64(keyLockID)); err != nil {
		return 0, err
	}

	q := fmt.Sprintf("SELECT setval('%[1]s', nextval('%[1]s') + $1 - 1)",
		schema.UsageKeySeq)
	var last int64
	if err := tx.QueryRow(ctx, q, int64(n)).Scan(&last); err != nil {
		return 0, err
	}
	return last - int64(n) + 1, nil
}

// EnsurePartitions creates empty partitions of a dataset for every
// dataset table. Managed catalogues get their partitions this way before
// their first usage is written.
func (s *Store) EnsurePartitions(ctx context.Context, datasetKey int) error {
	if _, ok := s.partitions.Load(datasetKey); ok {
		return nil
	}
	for _, v := range schema.PartitionedModels() {
		table := v.TableName()
		q := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES IN (%d)",
			schema.PartitionName(table, datasetKey), table, datasetKey,
		)
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return PartitionError(table, datasetKey, err)
		}
	}
	s.partitions.Store(datasetKey, struct{}{})
	return nil
}
