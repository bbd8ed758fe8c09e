package iooptimize

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// vacuum runs VACUUM ANALYZE on each table. It cannot run inside a
// transaction block.
func (o *optimizer) vacuum(ctx context.Context, tables []string) error {
	var bar *pb.ProgressBar
	if o.bar {
		bar = newProgressBar(len(tables), "VACUUM ANALYZE: ")
		defer bar.Finish()
	}

	pool := o.operator.Pool()
	for _, t := range tables {
		start := time.Now()
		if _, err := pool.Exec(ctx, "VACUUM ANALYZE "+t); err != nil {
			return VacuumError(t, err)
		}
		slog.Info("VACUUM ANALYZE completed",
			"table", t, "duration", time.Since(start).String())
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
