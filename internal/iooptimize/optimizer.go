// Package iooptimize implements the lifecycle.Optimizer. It removes
// orphaned rows from dataset tables and runs VACUUM ANALYZE on them.
package iooptimize

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gncat/pkg/db"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gnfmt"
)

type optimizer struct {
	operator db.Operator
	bar      bool
}

// Option configures the optimizer.
type Option func(*optimizer)

// OptProgressBar shows or hides the progress bar of the vacuum step.
func OptProgressBar(b bool) Option {
	return func(o *optimizer) {
		o.bar = b
	}
}

// New creates an Optimizer.
func New(op db.Operator, opts ...Option) lifecycle.Optimizer {
	res := &optimizer{operator: op, bar: true}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Optimize runs two steps:
//  1. Remove orphans: names without usages and attachments of usages
//     that do not exist anymore.
//  2. Run VACUUM ANALYZE on dataset tables.
func (o *optimizer) Optimize(
	ctx context.Context,
	datasetKeys ...int,
) (*lifecycle.OptimizeResult, error) {
	pool := o.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}
	start := time.Now()
	res := &lifecycle.OptimizeResult{Orphans: make(map[string]int64)}

	gn.Info("(1/2) removing orphans...")
	var total int64
	for _, q := range orphanQueries() {
		n, err := removeOrphans(ctx, pool, q, datasetKeys)
		if err != nil {
			return nil, err
		}
		res.Orphans[q.table] = n
		total += n
	}
	if total == 0 {
		gn.Message("<em>No orphaned records found</em>")
	} else {
		gn.Message("<em>Removed %s orphaned records</em>", humanize.Comma(total))
	}

	gn.Info("(2/2) running VACUUM ANALYZE...")
	tables := partitionedTables()
	if err := o.vacuum(ctx, tables); err != nil {
		return nil, err
	}
	res.Vacuumed = tables

	slog.Info("Database optimized",
		"datasets", datasetKeys,
		"orphans", total,
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return res, nil
}

func partitionedTables() []string {
	models := schema.PartitionedModels()
	res := make([]string, len(models))
	for i, m := range models {
		res[i] = m.TableName()
	}
	return res
}
