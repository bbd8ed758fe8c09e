package cmd

import (
	"context"
	"errors"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/iodb"
	"github.com/gnames/gncat/internal/ioimport"
	"github.com/gnames/gncat/internal/ioindex"
	"github.com/gnames/gncat/internal/iorepo"
	"github.com/gnames/gncat/internal/ioschema"
	"github.com/gnames/gncat/internal/iostore"
	"github.com/gnames/gncat/pkg/coord"
	"github.com/gnames/gncat/pkg/db"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/sector"
)

// app holds the storage layers shared by commands that work with data.
type app struct {
	op    db.Operator
	store *iostore.Store
	repo  *iorepo.Repo
	index *ioindex.Index
}

// openApp connects to the database and checks that the schema exists.
func openApp(ctx context.Context) (*app, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		op.Close()
		return nil, err
	}
	if !hasTables {
		op.Close()
		return nil, &gn.Error{
			Code: errcode.DBEmptyDatabaseError,
			Msg: `<err>Database appears to be empty.</err>
   Run <em>'gncat create'</em> first to initialize the schema.`,
			Err: errors.New("database has no tables"),
		}
	}

	st, err := iostore.New(op.Pool())
	if err != nil {
		op.Close()
		return nil, err
	}
	gdb, err := ioschema.OpenGORM(op.Pool())
	if err != nil {
		op.Close()
		return nil, err
	}

	res := &app{
		op:    op,
		store: st,
		repo:  iorepo.New(gdb),
		index: ioindex.New(gdb),
	}
	return res, nil
}

func (a *app) Close() {
	a.op.Close()
}

// coordinator creates a sync coordinator. Runs are canceled together
// with ctx.
func (a *app) coordinator(
	ctx context.Context,
	obs coord.Observer,
) *coord.Coordinator {
	policy, ok := sector.OverridePolicyFromString(cfg.Sync.MergeOverride)
	if !ok {
		gn.Warn("Unknown merge override policy <em>%s</em>, using <em>%s</em>",
			cfg.Sync.MergeOverride, policy)
	}
	f := sector.NewFactory(a.repo, a.store, a.index,
		sector.OptIndexBatchSize(cfg.Sync.IndexBatchSize),
		sector.OptOverridePolicy(policy),
	)
	return coord.New(ctx, f, cfg.Sync.Workers, obs)
}

// importer creates an Importer. With a non-nil coordinator, a dataset
// used by a running sync is not imported.
func (a *app) importer(c *coord.Coordinator) lifecycle.Importer {
	var opts []ioimport.Option
	if c != nil {
		opts = append(opts, ioimport.OptLocker(c))
	}
	return ioimport.New(cfg, a.store, a.repo, opts...)
}
