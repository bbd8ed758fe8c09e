package iostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/store"
	"github.com/jackc/pgx/v5"
)

var errClosed = errors.New("partition is closed")

// partition writes a dataset into staging tables inside one transaction.
// Staging tables carry the CHECK constraint of the partition bound, so the
// swap on Commit does not have to scan them.
type partition struct {
	s      *Store
	ds     int
	tx     pgx.Tx
	closed bool
}

// NewPartition creates staging tables for every dataset table.
func (s *Store) NewPartition(
	ctx context.Context,
	datasetKey int,
) (store.Partition, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, PartitionError("staging", datasetKey, err)
	}

	for _, v := range schema.PartitionedModels() {
		name := stagingName(v.TableName(), datasetKey)
		drop := "DROP TABLE IF EXISTS " + name
		if _, err = tx.Exec(ctx, drop); err != nil {
			_ = tx.Rollback(ctx)
			return nil, PartitionError(v.TableName(), datasetKey, err)
		}
		ddl := schema.StagingDDL(v, name, datasetKey)
		if _, err = tx.Exec(ctx, ddl); err != nil {
			_ = tx.Rollback(ctx)
			return nil, PartitionError(v.TableName(), datasetKey, err)
		}
	}

	res := &partition{s: s, ds: datasetKey, tx: tx}
	return res, nil
}

func stagingName(table string, datasetKey int) string {
	return schema.PartitionName(table, datasetKey) + "_new"
}

func (p *partition) DatasetKey() int {
	return p.ds
}

// NextKeys reserves keys in a separate transaction. Keys stay taken even
// when the partition is rolled back.
func (p *partition) NextKeys(ctx context.Context, n int) (int64, error) {
	if p.closed {
		return 0, errClosed
	}
	var res int64
	err := pgx.BeginFunc(ctx, p.s.pool, func(tx pgx.Tx) error {
		var err error
		res, err = reserveKeys(ctx, tx, n)
		return err
	})
	if err != nil {
		return 0, WriteError(schema.UsageKeySeq, "", p.ds, err)
	}
	return res, nil
}

func (p *partition) copyRows(
	ctx context.Context,
	m schema.DDLGenerator,
	rows [][]any,
) error {
	if p.closed {
		return errClosed
	}
	if len(rows) == 0 {
		return nil
	}
	table := stagingName(m.TableName(), p.ds)
	_, err := p.tx.CopyFrom(ctx,
		pgx.Identifier{table},
		schema.Columns(m),
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return WriteError(m.TableName(), "", p.ds, err)
	}
	return nil
}

func (p *partition) AddReferences(
	ctx context.Context,
	refs []model.Reference,
) error {
	rows := make([][]any, len(refs))
	for i := range refs {
		rows[i] = values(toReferenceRow(p.ds, &refs[i]))
	}
	return p.copyRows(ctx, schema.ReferenceRow{}, rows)
}

func (p *partition) AddNames(ctx context.Context, names []model.Name) error {
	rows := make([][]any, len(names))
	for i := range names {
		rows[i] = values(toNameRow(p.ds, &names[i]))
	}
	return p.copyRows(ctx, schema.NameRow{}, rows)
}

func (p *partition) AddUsages(ctx context.Context, usages []model.Usage) error {
	rows := make([][]any, len(usages))
	for i := range usages {
		rows[i] = values(toUsageRow(p.ds, &usages[i]))
	}
	return p.copyRows(ctx, schema.UsageRow{}, rows)
}

func (p *partition) AddAttachments(
	ctx context.Context,
	atts []model.UsageAttachments,
) error {
	var rows attachmentRows
	for i := range atts {
		rows.add(p.ds, atts[i].UsageID, &atts[i].Attachments)
	}
	for _, v := range rows.tables() {
		if err := p.copyRows(ctx, v.model, v.rows); err != nil {
			return err
		}
	}
	return nil
}

// Commit replaces old partitions of the dataset with the staging tables.
// Attaching builds the indexes of the parent tables, duplicate IDs are
// reported as conflicts at this point.
func (p *partition) Commit(ctx context.Context) error {
	if p.closed {
		return errClosed
	}
	p.closed = true

	for _, v := range schema.PartitionedModels() {
		if err := p.swap(ctx, v.TableName()); err != nil {
			_ = p.tx.Rollback(ctx)
			return err
		}
	}

	if err := p.tx.Commit(ctx); err != nil {
		return PartitionError("commit", p.ds, err)
	}
	p.s.partitions.Store(p.ds, struct{}{})
	slog.Debug("Replaced dataset partitions", "dataset", p.ds)
	return nil
}

func (p *partition) swap(ctx context.Context, table string) error {
	name := schema.PartitionName(table, p.ds)

	var exists bool
	err := p.tx.QueryRow(ctx,
		"SELECT to_regclass($1) IS NOT NULL", name,
	).Scan(&exists)
	if err != nil {
		return PartitionError(table, p.ds, err)
	}

	var qs []string
	if exists {
		qs = append(qs,
			fmt.Sprintf("ALTER TABLE %s DETACH PARTITION %s", table, name),
			"DROP TABLE "+name,
		)
	}
	qs = append(qs,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
			stagingName(table, p.ds), name),
		fmt.Sprintf("ALTER TABLE %s ATTACH PARTITION %s FOR VALUES IN (%d)",
			table, name, p.ds),
	)

	for _, q := range qs {
		if _, err = p.tx.Exec(ctx, q); err != nil {
			return PartitionError(table, p.ds, err)
		}
	}
	return nil
}

func (p *partition) Rollback(ctx context.Context) error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.tx.Rollback(ctx); err != nil {
		return PartitionError("rollback", p.ds, err)
	}
	return nil
}
