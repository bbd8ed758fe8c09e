// Package ioarchive reads Species File Group Archives (SFGA). An archive
// is fetched into the cache and opened as a SQLite database. Its tables
// are streamed as verbatim records in the order the graph assembly needs:
// references, taxa, synonyms, bare names and then the extensions.
package ioarchive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gncat/pkg/model"
	"github.com/sfborg/sflib"
	_ "modernc.org/sqlite"
)

const colPrefix = "col__"

// Archive is an opened SFGA.
type Archive struct {
	db   *sql.DB
	path string
	seq  int
}

// Open fetches an archive from a local path or URL into cacheDir and
// opens its SQLite database.
func Open(ctx context.Context, path, cacheDir string) (*Archive, error) {
	arc := sflib.NewSfga()
	if err := arc.Fetch(path, cacheDir); err != nil {
		return nil, FetchError(path, err)
	}
	dbPath := arc.DbPath()
	if dbPath == "" {
		return nil, FetchError(path, fmt.Errorf("no database in archive"))
	}
	return OpenSQLite(ctx, dbPath)
}

// OpenSQLite opens an already unpacked SFGA database.
func OpenSQLite(ctx context.Context, dbPath string) (*Archive, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, OpenError(dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, OpenError(dbPath, err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, OpenError(dbPath, err)
	}
	return &Archive{db: db, path: dbPath}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the path of the SQLite database.
func (a *Archive) Path() string {
	return a.path
}

// Records sends all records of the archive to ch and closes it. Missing
// tables are skipped.
func (a *Archive) Records(
	ctx context.Context,
	ch chan<- model.VerbatimRecord,
) error {
	defer close(ch)

	steps := []func(context.Context, chan<- model.VerbatimRecord) error{
		a.table("reference", model.ReferenceRecord),
		a.usages("taxon", model.TaxonRecord),
		a.usages("synonym", model.SynonymRecord),
		a.bareNames,
		a.table("vernacular", model.VernacularRecord),
		a.table("distribution", model.DistributionRecord),
		a.table("media", model.MediaRecord),
	}
	for _, step := range steps {
		if err := step(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of rows in the tables of usages.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var res int
	for _, t := range []string{"taxon", "synonym", "name"} {
		ok, err := a.hasTable(ctx, t)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		var n int
		q := "SELECT count(*) FROM " + t
		if err = a.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return 0, ReadError(t, err)
		}
		res += n
	}
	return res, nil
}

func (a *Archive) hasTable(ctx context.Context, table string) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		table,
	).Scan(&n)
	if err != nil {
		return false, ReadError(table, err)
	}
	return n > 0, nil
}

func (a *Archive) columns(ctx context.Context, table string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, ReadError(table, err)
	}
	defer rows.Close()
	res, err := rows.Columns()
	if err != nil {
		return nil, ReadError(table, err)
	}
	return res, nil
}

// term maps an archive column to a term. Columns without the col__
// prefix are not part of the data model.
func term(col string) (model.Term, bool) {
	col = strings.ToLower(col)
	if !strings.HasPrefix(col, colPrefix) {
		return "", false
	}
	return model.Term(strings.TrimPrefix(col, colPrefix)), true
}

// nameTerm maps a column of the name table joined to a usage. Its ID is
// the name ID of the usage and its status is nomenclatural.
func nameTerm(col string) (model.Term, bool) {
	t, ok := term(col)
	switch {
	case !ok:
		return "", false
	case t == model.TermID:
		return model.TermNameID, true
	case t == model.TermStatus:
		return model.TermNomStatus, true
	}
	return t, true
}

type mapper func(string) (model.Term, bool)

// query streams rows of a query. Each column is mapped by the mapper of
// its position. A term set by an earlier column is not overwritten.
func (a *Archive) query(
	ctx context.Context,
	ch chan<- model.VerbatimRecord,
	file string,
	typ model.RecordType,
	mappers []mapper,
	q string,
) error {
	rows, err := a.db.QueryContext(ctx, q)
	if err != nil {
		return ReadError(file, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return ReadError(file, err)
	}
	terms := make([]model.Term, len(cols))
	for i, c := range cols {
		if t, ok := mappers[i](c); ok {
			terms[i] = t
		}
	}

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var line int
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return ReadError(file, err)
		}
		line++
		fields := make(map[model.Term]string, len(cols))
		for i, v := range vals {
			if terms[i] == "" || !v.Valid || v.String == "" {
				continue
			}
			if _, ok := fields[terms[i]]; ok {
				continue
			}
			fields[terms[i]] = v.String
		}
		a.seq++
		rec := model.NewVerbatimRecord(a.seq, typ, file, line, fields)
		select {
		case ch <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err = rows.Err(); err != nil {
		return ReadError(file, err)
	}
	slog.Debug("Read archive table", "table", file, "records", line)
	return nil
}

func repeat(m mapper, n int) []mapper {
	res := make([]mapper, n)
	for i := range res {
		res[i] = m
	}
	return res
}

func (a *Archive) table(
	table string,
	typ model.RecordType,
) func(context.Context, chan<- model.VerbatimRecord) error {
	return func(ctx context.Context, ch chan<- model.VerbatimRecord) error {
		ok, err := a.hasTable(ctx, table)
		if err != nil || !ok {
			return err
		}
		cols, err := a.columns(ctx, table)
		if err != nil {
			return err
		}
		q := "SELECT * FROM " + table + " ORDER BY rowid"
		return a.query(ctx, ch, table, typ, repeat(term, len(cols)), q)
	}
}

// usages reads taxa or synonyms together with the columns of their names.
func (a *Archive) usages(
	table string,
	typ model.RecordType,
) func(context.Context, chan<- model.VerbatimRecord) error {
	return func(ctx context.Context, ch chan<- model.VerbatimRecord) error {
		ok, err := a.hasTable(ctx, table)
		if err != nil || !ok {
			return err
		}
		ucols, err := a.columns(ctx, table)
		if err != nil {
			return err
		}
		ncols, err := a.columns(ctx, "name")
		if err != nil {
			return err
		}

		sel := make([]string, 0, len(ucols)+len(ncols))
		for _, c := range ucols {
			sel = append(sel, "u."+c)
		}
		for _, c := range ncols {
			sel = append(sel, "n."+c)
		}
		q := fmt.Sprintf(
			"SELECT %s FROM %s u LEFT JOIN name n ON n.col__id = u.col__name_id "+
				"ORDER BY u.rowid",
			strings.Join(sel, ", "), table,
		)
		mappers := append(repeat(term, len(ucols)), repeat(nameTerm, len(ncols))...)
		return a.query(ctx, ch, table, typ, mappers, q)
	}
}

// bareNames reads names that are used by neither a taxon nor a synonym.
func (a *Archive) bareNames(
	ctx context.Context,
	ch chan<- model.VerbatimRecord,
) error {
	ok, err := a.hasTable(ctx, "name")
	if err != nil || !ok {
		return err
	}
	cols, err := a.columns(ctx, "name")
	if err != nil {
		return err
	}

	var conds []string
	for _, t := range []string{"taxon", "synonym"} {
		ok, err = a.hasTable(ctx, t)
		if err != nil {
			return err
		}
		if ok {
			conds = append(conds, fmt.Sprintf(
				"NOT EXISTS (SELECT 1 FROM %s u WHERE u.col__name_id = n.col__id)", t))
		}
	}
	q := "SELECT * FROM name n"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY n.rowid"

	bare := func(col string) (model.Term, bool) {
		t, ok := term(col)
		if ok && t == model.TermStatus {
			return model.TermNomStatus, true
		}
		return t, ok
	}
	return a.query(ctx, ch, "name", model.NameRecord, repeat(bare, len(cols)), q)
}
