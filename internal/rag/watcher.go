package rag

import (
	"context"
	"sync"
	"time"
)

// GenerationSource reports the generation of the persisted index.
type GenerationSource interface {
	Generation(ctx context.Context) (int64, error)
}

// IndexWatcher caches the current index generation. Readers see a
// generation no older than the staleness window; Publish makes a rebuild
// done in this process visible immediately.
type IndexWatcher struct {
	source GenerationSource
	window time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	gen       int64
	checkedAt time.Time
	loaded    bool
}

func NewIndexWatcher(source GenerationSource, window time.Duration) *IndexWatcher {
	return &IndexWatcher{source: source, window: window, now: time.Now}
}

// Current returns the index generation, reloading it from the source when
// the cached value has outlived the staleness window.
func (w *IndexWatcher) Current(ctx context.Context) (int64, error) {
	w.mu.RLock()
	if w.loaded && w.now().Sub(w.checkedAt) < w.window {
		gen := w.gen
		w.mu.RUnlock()
		return gen, nil
	}
	w.mu.RUnlock()

	gen, err := w.source.Generation(ctx)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// A concurrent Publish may have already moved past what we read.
	if !w.loaded || gen >= w.gen {
		w.gen = gen
	}
	w.checkedAt = w.now()
	w.loaded = true
	return w.gen, nil
}

// Publish records a generation produced by an index rebuild.
func (w *IndexWatcher) Publish(gen int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded && gen < w.gen {
		return
	}
	w.gen = gen
	w.checkedAt = w.now()
	w.loaded = true
}
