package iooptimize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnames/gncat/pkg/schema"
	"github.com/jackc/pgx/v5/pgxpool"
)

// orphanQuery deletes rows of a table that have no row with the same
// dataset_key and id in the parent table.
type orphanQuery struct {
	table  string
	column string
	parent string
	ref    string
}

// orphanQueries lists orphan checks in the order they run. Names go
// last, so usages removed by earlier steps do not keep them.
func orphanQueries() []orphanQuery {
	usages := schema.UsageRow{}.TableName()
	res := []orphanQuery{
		{schema.VernacularRow{}.TableName(), "usage_id", usages, "id"},
		{schema.DistributionRow{}.TableName(), "usage_id", usages, "id"},
		{schema.MediaRow{}.TableName(), "usage_id", usages, "id"},
		{schema.DescriptionRow{}.TableName(), "usage_id", usages, "id"},
		{schema.NameRow{}.TableName(), "id", usages, "name_id"},
	}
	return res
}

// sql builds the DELETE statement. With datasets it is limited to
// dataset_key = ANY($1).
func (q orphanQuery) sql(withDatasets bool) string {
	where := ""
	if withDatasets {
		where = "t.dataset_key = ANY($1) AND "
	}
	return fmt.Sprintf(`
DELETE FROM %[1]s t
WHERE %[5]sNOT EXISTS (
	SELECT 1 FROM %[3]s p
	WHERE p.dataset_key = t.dataset_key AND p.%[4]s = t.%[2]s
)`, q.table, q.column, q.parent, q.ref, where)
}

func removeOrphans(
	ctx context.Context,
	pool *pgxpool.Pool,
	q orphanQuery,
	datasetKeys []int,
) (int64, error) {
	var args []any
	if len(datasetKeys) > 0 {
		args = append(args, datasetKeys)
	}
	tag, err := pool.Exec(ctx, q.sql(len(args) > 0), args...)
	if err != nil {
		return 0, OrphanRemovalError(q.table, err)
	}
	n := tag.RowsAffected()
	slog.Info("Removed orphans", "table", q.table, "count", n)
	return n, nil
}
