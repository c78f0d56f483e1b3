// Package ingest imports documents in bulk. Documents are prepared in
// parallel on a worker pool and committed one at a time in input order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"

	"github.com/japaniel/lingoreader/pkg/plugin"
	"github.com/japaniel/lingoreader/pkg/reader"
)

// WorkerPoolInterface is the subset of WorkerPool used by Importer.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(job Job) error
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

type preparer interface {
	Prepare(ctx context.Context, run *plugin.Run, in reader.ImportInput) (reader.Prepared, error)
	Commit(ctx context.Context, p reader.Prepared) (int64, error)
}

type runner interface {
	NewRun() *plugin.Run
}

// Importer imports many documents on one processor run.
type Importer struct {
	svc     preparer
	plugins runner
	log     *slog.Logger

	// Workers bounds parallel preparation. Zero means GOMAXPROCS.
	Workers int
	// OnProgress, if set, is called after each commit.
	OnProgress func(done, total int)
	// PoolFactory builds the worker pool; tests replace it.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewImporter returns an Importer backed by svc and the plugin registry.
func NewImporter(logger *slog.Logger, svc preparer, plugins runner) *Importer {
	return &Importer{
		svc:     svc,
		plugins: plugins,
		log:     logger.With("service", "ingest"),
		PoolFactory: func(workers, queue int) WorkerPoolInterface {
			return NewWorkerPool(workers, queue)
		},
	}
}

type prepared struct {
	index int
	doc   reader.Prepared
	err   error
}

// ImportAll prepares and stores docs and returns the new text ids in input
// order. The first failure stops the import; the ids of documents committed
// before it are returned with the error.
func (im *Importer) ImportAll(ctx context.Context, docs []reader.ImportInput) ([]int64, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	workers := im.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(docs))

	run := im.plugins.NewRun()
	log := im.log.With("run_id", run.ID, "documents", len(docs))
	log.Info("bulk import started", "workers", workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Room for every result, so workers never block on a stopped consumer.
	resultCh := make(chan prepared, len(docs))
	wp := im.PoolFactory(workers, workers*2)
	wp.Start(ctx)

	ids := make([]int64, 0, len(docs))
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- im.commitInOrder(ctx, cancel, resultCh, docs, &ids)
	}()

	var submitErr error
	for i, doc := range docs {
		job := func(ctx context.Context) error {
			p, err := im.svc.Prepare(ctx, run, doc)
			resultCh <- prepared{index: i, doc: p, err: err}
			return err
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if ctx.Err() == nil {
				submitErr = fmt.Errorf("submit document %d: %w", i+1, err)
				cancel()
			}
			break
		}
	}
	wp.Close()
	close(resultCh)

	err := <-doneCh
	switch {
	case submitErr != nil:
		err = submitErr
	case err == nil && len(ids) < len(docs):
		err = ctx.Err()
		if err == nil {
			err = errors.New("bulk import stopped early")
		}
	}
	if err != nil {
		log.Error("bulk import failed", "committed", len(ids), "error", err)
		return ids, err
	}
	if skipped := run.Skipped(); len(skipped) > 0 {
		log.Warn("processors disabled during import", "processors", slices.Sorted(maps.Keys(skipped)))
	}
	log.Info("bulk import finished", "committed", len(ids))
	return ids, nil
}

// commitInOrder buffers prepared documents and commits the contiguous prefix
// as it becomes available. After the first error it drains results without
// committing.
func (im *Importer) commitInOrder(ctx context.Context, cancel context.CancelFunc, resultCh <-chan prepared, docs []reader.ImportInput, ids *[]int64) error {
	pending := make(map[int]prepared)
	next := 0
	var firstErr error

	for res := range resultCh {
		if firstErr != nil {
			continue
		}
		pending[res.index] = res
		for {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if cur.err != nil {
				firstErr = fmt.Errorf("document %d (%q): %w", next+1, docs[next].Title, cur.err)
				cancel()
				break
			}
			id, err := im.svc.Commit(ctx, cur.doc)
			if err != nil {
				firstErr = fmt.Errorf("document %d (%q): %w", next+1, docs[next].Title, err)
				cancel()
				break
			}
			*ids = append(*ids, id)
			next++
			if im.OnProgress != nil {
				im.OnProgress(next, len(docs))
			}
		}
	}
	return firstErr
}
