// Package persist writes an assembled graph into a new dataset partition.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnames/gncat/pkg/graph"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
)

// Result summarizes a persisted partition.
type Result struct {
	DatasetKey  int
	References  int
	Names       int
	Usages      int
	Attachments int
}

// Persister walks a resolved graph in classification order and writes it
// in batches.
type Persister struct {
	parts     store.Partitions
	batchSize int
	progress  func(usages int)
}

// Option configures a Persister.
type Option func(*Persister)

// OptProgress sets a callback that receives the number of usages written
// so far after every batch.
func OptProgress(fn func(usages int)) Option {
	return func(p *Persister) {
		p.progress = fn
	}
}

// New creates a Persister. Non-positive batch sizes fall back to 10,000.
func New(parts store.Partitions, batchSize int, opts ...Option) *Persister {
	if batchSize <= 0 {
		batchSize = 10_000
	}
	res := &Persister{parts: parts, batchSize: batchSize}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Persist writes the graph into a new partition of the dataset and commits
// it. On any error the new partition is rolled back and the previous one
// stays visible.
func (p *Persister) Persist(
	ctx context.Context,
	g *graph.Store,
	datasetKey int,
) (res Result, err error) {
	res.DatasetKey = datasetKey
	part, err := p.parts.NewPartition(ctx, datasetKey)
	if err != nil {
		return res, fmt.Errorf("cannot create partition of dataset %d: %w",
			datasetKey, err)
	}
	defer func() {
		if err == nil {
			return
		}
		rbErr := part.Rollback(context.WithoutCancel(ctx))
		if rbErr != nil {
			slog.Error("Cannot roll back partition",
				"dataset", datasetKey, "error", rbErr)
			err = errors.Join(err, rbErr)
		}
	}()

	if err = p.writeReferences(ctx, part, g.References()); err != nil {
		return res, err
	}
	res.References = len(g.References())

	order, err := walkOrder(g)
	if err != nil {
		return res, err
	}

	k, err := p.assignKeys(ctx, part, g, order)
	if err != nil {
		return res, err
	}

	w := writer{part: part, batchSize: p.batchSize, progress: p.progress}
	for _, h := range order {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		n := g.Node(h)
		u := n.Usage
		u.DatasetKey = datasetKey
		u.Key = k.usage[h]
		if pa := n.Parent(); pa != graph.NoHandle {
			u.ParentKey = k.usage[pa]
		}
		if acc := n.Accepted(); acc != graph.NoHandle {
			u.AcceptedKey = k.usage[acc]
		}
		u.Name.DatasetKey = datasetKey
		u.Name.Key = k.name[u.Name.ID]
		if bas := n.Basionym(); bas != graph.NoHandle {
			u.Name.BasionymKey = k.name[g.Node(bas).Usage.Name.ID]
		}

		if err = w.add(ctx, u, n.Attachments, k.first(h, u.Name.ID)); err != nil {
			return res, err
		}
	}
	if err = w.flush(ctx); err != nil {
		return res, err
	}

	if err = part.Commit(ctx); err != nil {
		return res, fmt.Errorf("cannot commit partition of dataset %d: %w",
			datasetKey, err)
	}
	res.Names = w.names
	res.Usages = w.usages
	res.Attachments = w.atts
	return res, nil
}

func (p *Persister) writeReferences(
	ctx context.Context,
	part store.Partition,
	refs []model.Reference,
) error {
	for i := 0; i < len(refs); i += p.batchSize {
		end := min(i+p.batchSize, len(refs))
		if err := part.AddReferences(ctx, refs[i:end]); err != nil {
			return fmt.Errorf("cannot write references: %w", err)
		}
	}
	return nil
}

func walkOrder(g *graph.Store) ([]graph.Handle, error) {
	res := make([]graph.Handle, 0, g.Len())
	err := g.Walk(func(n *graph.Node) error {
		res = append(res, n.Handle)
		return nil
	})
	return res, err
}

type keys struct {
	usage     map[graph.Handle]int64
	name      map[string]int64
	nameOwner map[string]graph.Handle
}

// first is true when h is the usage that writes the name.
func (k keys) first(h graph.Handle, nameID string) bool {
	return k.nameOwner[nameID] == h
}

// assignKeys reserves durable keys for usages and names in walk order.
// Usages sharing a name ID share one name record.
func (p *Persister) assignKeys(
	ctx context.Context,
	part store.Partition,
	g *graph.Store,
	order []graph.Handle,
) (keys, error) {
	res := keys{
		usage:     make(map[graph.Handle]int64, len(order)),
		name:      make(map[string]int64, len(order)),
		nameOwner: make(map[string]graph.Handle, len(order)),
	}
	if len(order) == 0 {
		return res, nil
	}

	var names int
	for _, h := range order {
		id := g.Node(h).Usage.Name.ID
		if _, ok := res.nameOwner[id]; !ok {
			res.nameOwner[id] = h
			names++
		}
	}

	first, err := part.NextKeys(ctx, len(order)+names)
	if err != nil {
		return res, fmt.Errorf("cannot reserve keys: %w", err)
	}
	next := first
	for _, h := range order {
		res.usage[h] = next
		next++
	}
	for _, h := range order {
		id := g.Node(h).Usage.Name.ID
		if res.nameOwner[id] != h {
			continue
		}
		res.name[id] = next
		next++
	}
	return res, nil
}

type writer struct {
	part      store.Partition
	batchSize int
	progress  func(int)

	nameBuf  []model.Name
	usageBuf []model.Usage
	attBuf   []model.UsageAttachments

	names, usages, atts int
}

func (w *writer) add(
	ctx context.Context,
	u model.Usage,
	att model.Attachments,
	writeName bool,
) error {
	if writeName {
		w.nameBuf = append(w.nameBuf, u.Name)
	}
	w.usageBuf = append(w.usageBuf, u)
	if !att.IsEmpty() {
		w.attBuf = append(w.attBuf, model.UsageAttachments{
			UsageKey:    u.Key,
			UsageID:     u.ID,
			Attachments: att,
		})
	}
	if len(w.usageBuf) >= w.batchSize {
		return w.flush(ctx)
	}
	return nil
}

func (w *writer) flush(ctx context.Context) error {
	if len(w.nameBuf) > 0 {
		if err := w.part.AddNames(ctx, w.nameBuf); err != nil {
			return fmt.Errorf("cannot write names: %w", err)
		}
		w.names += len(w.nameBuf)
		w.nameBuf = nil
	}
	if len(w.usageBuf) > 0 {
		if err := w.part.AddUsages(ctx, w.usageBuf); err != nil {
			return fmt.Errorf("cannot write usages: %w", err)
		}
		w.usages += len(w.usageBuf)
		w.usageBuf = nil
	}
	if len(w.attBuf) > 0 {
		if err := w.part.AddAttachments(ctx, w.attBuf); err != nil {
			return fmt.Errorf("cannot write attachments: %w", err)
		}
		for _, v := range w.attBuf {
			w.atts += v.Len()
		}
		w.attBuf = nil
	}
	if w.progress != nil {
		w.progress(w.usages)
	}
	return nil
}
