package iostore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/store"
	"github.com/jackc/pgx/v5"
)

var (
	usageCols = schema.Columns(schema.UsageRow{})
	nameCols  = schema.Columns(schema.NameRow{})

	usageTable = schema.UsageRow{}.TableName()
	nameTable  = schema.NameRow{}.TableName()

	selectUsages = fmt.Sprintf(
		"SELECT %s, %s FROM %s u JOIN %s n "+
			"ON n.dataset_key = u.dataset_key AND n.id = u.name_id "+
			"WHERE u.dataset_key = $1",
		qualified("u", usageCols), qualified("n", nameCols),
		usageTable, nameTable,
	)

	orderUsages = " ORDER BY u.ordinal, u.id"
)

// usageWithName is a usage row joined with its name row. Columns are
// read by position, usage columns first.
type usageWithName struct {
	schema.UsageRow
	schema.NameRow
}

func collectUsage(row pgx.CollectableRow) (*model.Usage, error) {
	r, err := pgx.RowToAddrOfStructByPos[usageWithName](row)
	if err != nil {
		return nil, err
	}
	return fromRows(&r.UsageRow, &r.NameRow), nil
}

func (s *Store) usages(
	ctx context.Context,
	datasetKey int,
	where string,
	args ...any,
) ([]*model.Usage, error) {
	q := selectUsages + where + orderUsages
	rows, err := s.pool.Query(ctx, q, append([]any{datasetKey}, args...)...)
	if err != nil {
		return nil, QueryError(usageTable, datasetKey, err)
	}
	res, err := pgx.CollectRows(rows, collectUsage)
	if err != nil {
		return nil, QueryError(usageTable, datasetKey, err)
	}
	return res, nil
}

func (s *Store) Usage(
	ctx context.Context,
	datasetKey int,
	id string,
) (*model.Usage, error) {
	rows, err := s.pool.Query(ctx, selectUsages+" AND u.id = $2", datasetKey, id)
	if err != nil {
		return nil, QueryError(usageTable, datasetKey, err)
	}
	res, err := pgx.CollectOneRow(rows, collectUsage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, QueryError(usageTable, datasetKey, err)
	}
	return res, nil
}

func (s *Store) Children(
	ctx context.Context,
	datasetKey int,
	id string,
) ([]*model.Usage, error) {
	return s.usages(ctx, datasetKey,
		" AND u.kind = $2 AND u.parent_id = $3", int(model.TaxonKind), id)
}

func (s *Store) Synonyms(
	ctx context.Context,
	datasetKey int,
	id string,
) ([]*model.Usage, error) {
	return s.usages(ctx, datasetKey,
		" AND u.kind = $2 AND u.accepted_id = $3", int(model.SynonymKind), id)
}

func (s *Store) SectorUsages(
	ctx context.Context,
	datasetKey, sectorKey int,
) ([]*model.Usage, error) {
	return s.usages(ctx, datasetKey, " AND u.sector_key = $2", sectorKey)
}

func (s *Store) ListUsages(
	ctx context.Context,
	datasetKey int,
) ([]*model.Usage, error) {
	return s.usages(ctx, datasetKey, "")
}

// Roots returns taxa without a parent.
func (s *Store) Roots(
	ctx context.Context,
	datasetKey int,
) ([]*model.Usage, error) {
	return s.usages(ctx, datasetKey,
		" AND u.kind = $2 AND u.parent_id = ''", int(model.TaxonKind))
}

func collectAttachment[R, M any](
	ctx context.Context,
	s *Store,
	m schema.DDLGenerator,
	datasetKey int,
	id string,
	conv func(R) M,
) ([]M, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE dataset_key = $1 AND usage_id = $2 "+
			"ORDER BY ctid",
		qualified(m.TableName(), schema.Columns(m)), m.TableName(),
	)
	rows, err := s.pool.Query(ctx, q, datasetKey, id)
	if err != nil {
		return nil, QueryError(m.TableName(), datasetKey, err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (M, error) {
		r, err := pgx.RowToStructByName[R](row)
		return conv(r), err
	})
	if err != nil {
		return nil, QueryError(m.TableName(), datasetKey, err)
	}
	return res, nil
}

func (s *Store) Attachments(
	ctx context.Context,
	datasetKey int,
	id string,
) (model.Attachments, error) {
	var res model.Attachments
	var err error
	res.Vernaculars, err = collectAttachment(ctx, s, schema.VernacularRow{},
		datasetKey, id, fromVernacularRow)
	if err != nil {
		return res, err
	}
	res.Distributions, err = collectAttachment(ctx, s, schema.DistributionRow{},
		datasetKey, id, fromDistributionRow)
	if err != nil {
		return res, err
	}
	res.Media, err = collectAttachment(ctx, s, schema.MediaRow{},
		datasetKey, id, fromMediaRow)
	if err != nil {
		return res, err
	}
	res.Descriptions, err = collectAttachment(ctx, s, schema.DescriptionRow{},
		datasetKey, id, fromDescriptionRow)
	return res, err
}

// saveName inserts or updates the name of a usage and sets its durable
// key. A name keeps its key for its whole life.
func saveName(ctx context.Context, tx pgx.Tx, ds int, n *model.Name) error {
	err := tx.QueryRow(ctx,
		"SELECT key FROM name WHERE dataset_key = $1 AND id = $2", ds, n.ID,
	).Scan(&n.Key)
	if errors.Is(err, pgx.ErrNoRows) {
		n.Key, err = reserveKeys(ctx, tx, 1)
	}
	if err != nil {
		return WriteError(nameTable, n.ID, ds, err)
	}

	q := upsertSQL(nameTable, nameCols)
	row := toNameRow(ds, n)
	if err = tx.QueryRow(ctx, q, values(row)...).Scan(&n.Key); err != nil {
		return WriteError(nameTable, n.ID, ds, err)
	}
	n.DatasetKey = ds
	return nil
}

func insertAttachments(
	ctx context.Context,
	tx pgx.Tx,
	ds int,
	id string,
	att *model.Attachments,
) error {
	var rows attachmentRows
	rows.add(ds, id, att)
	for _, v := range rows.tables() {
		if len(v.rows) == 0 {
			continue
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{v.model.TableName()},
			schema.Columns(v.model),
			pgx.CopyFromRows(v.rows),
		)
		if err != nil {
			return WriteError(v.model.TableName(), id, ds, err)
		}
	}
	return nil
}

func deleteAttachments(
	ctx context.Context,
	tx pgx.Tx,
	ds int,
	id string,
) error {
	models := []schema.DDLGenerator{
		schema.VernacularRow{},
		schema.DistributionRow{},
		schema.MediaRow{},
		schema.DescriptionRow{},
	}
	for _, v := range models {
		q := fmt.Sprintf(
			"DELETE FROM %s WHERE dataset_key = $1 AND usage_id = $2",
			v.TableName(),
		)
		if _, err := tx.Exec(ctx, q, ds, id); err != nil {
			return WriteError(v.TableName(), id, ds, err)
		}
	}
	return nil
}

func (s *Store) CreateUsage(
	ctx context.Context,
	u *model.Usage,
	att model.Attachments,
) error {
	ds := u.DatasetKey
	if err := s.EnsurePartitions(ctx, ds); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		key, err := reserveKeys(ctx, tx, 1)
		if err != nil {
			return WriteError(usageTable, u.ID, ds, err)
		}

		if err = saveName(ctx, tx, ds, &u.Name); err != nil {
			return err
		}

		u.Key = key
		q := insertSQL(usageTable, usageCols)
		if _, err = tx.Exec(ctx, q, values(toUsageRow(ds, u))...); err != nil {
			u.Key = 0
			return WriteError(usageTable, u.ID, ds, err)
		}

		return insertAttachments(ctx, tx, ds, u.ID, &att)
	})
}

func (s *Store) UpdateUsage(
	ctx context.Context,
	u *model.Usage,
	att model.Attachments,
) error {
	ds := u.DatasetKey
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		cols := updatableColumns(usageCols)
		row := toUsageRow(ds, u)
		vals := values(row)

		set := make([]string, len(cols))
		args := []any{ds, u.ID}
		for i, c := range cols {
			set[i] = fmt.Sprintf("%s = $%d", c, i+3)
			args = append(args, vals[slices.Index(usageCols, c)])
		}
		q := fmt.Sprintf(
			"UPDATE %s SET %s WHERE dataset_key = $1 AND id = $2 RETURNING key",
			usageTable, strings.Join(set, ", "),
		)

		err := tx.QueryRow(ctx, q, args...).Scan(&u.Key)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return WriteError(usageTable, u.ID, ds, err)
		}

		if err = saveName(ctx, tx, ds, &u.Name); err != nil {
			return err
		}
		if err = deleteAttachments(ctx, tx, ds, u.ID); err != nil {
			return err
		}
		return insertAttachments(ctx, tx, ds, u.ID, &att)
	})
}

func (s *Store) AddAttachments(
	ctx context.Context,
	datasetKey int,
	id string,
	att model.Attachments,
) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM name_usage "+
				"WHERE dataset_key = $1 AND id = $2)",
			datasetKey, id,
		).Scan(&exists)
		if err != nil {
			return QueryError(usageTable, datasetKey, err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return insertAttachments(ctx, tx, datasetKey, id, &att)
	})
}

// DeleteUsage removes a usage with its attachments. Its name is removed
// only when no other usage refers to it.
func (s *Store) DeleteUsage(ctx context.Context, datasetKey int, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var nameID string
		err := tx.QueryRow(ctx,
			"DELETE FROM name_usage WHERE dataset_key = $1 AND id = $2 "+
				"RETURNING name_id",
			datasetKey, id,
		).Scan(&nameID)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return WriteError(usageTable, id, datasetKey, err)
		}

		if err = deleteAttachments(ctx, tx, datasetKey, id); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM name n
			WHERE n.dataset_key = $1 AND n.id = $2 AND NOT EXISTS (
				SELECT 1 FROM name_usage u
				WHERE u.dataset_key = $1 AND u.name_id = $2
			)`, datasetKey, nameID,
		)
		if err != nil {
			return WriteError(nameTable, nameID, datasetKey, err)
		}
		return nil
	})
}

func (s *Store) CountForeignChildren(
	ctx context.Context,
	datasetKey int,
	id string,
	sectorKey int,
) (int, error) {
	var res int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM name_usage
		WHERE dataset_key = $1 AND sector_key <> $3 AND (
			(kind = $4 AND parent_id = $2) OR
			(kind = $5 AND accepted_id = $2)
		)`,
		datasetKey, id, sectorKey,
		int(model.TaxonKind), int(model.SynonymKind),
	).Scan(&res)
	if err != nil {
		return 0, QueryError(usageTable, datasetKey, err)
	}
	return res, nil
}

func (s *Store) Count(
	ctx context.Context,
	datasetKey int,
) (int, int, error) {
	var usages, names int
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM name_usage WHERE dataset_key = $1),
			(SELECT count(*) FROM name WHERE dataset_key = $1)`,
		datasetKey,
	).Scan(&usages, &names)
	if err != nil {
		return 0, 0, QueryError(usageTable, datasetKey, err)
	}
	return usages, names, nil
}
