// Package updater applies a new key across the files of a resource family.
//
// The orchestrator composes discovery, language resolution, and the store:
// it decides which file(s) receive the key, dispatches the writes to a
// bounded worker pool, and notifies external collaborators once the files
// are durably updated. Writes to sibling files are independent — there is
// no cross-file transaction. When the primary write lands and the
// secondary one fails, the family is left inconsistent (key present in one
// file, absent in the other); the overall result is still failure, and the
// applied write is not rolled back. That limitation is accepted, not
// masked.
package updater

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/minios-linux/reskit/discovery"
	"github.com/minios-linux/reskit/langconfig"
	"github.com/minios-linux/reskit/resx"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Notifier is the narrow capability the host environment exposes for
// reacting to resource changes: regenerating the generated accessor class
// for a touched file and invalidating any cached analysis of a family.
// Both calls are best-effort; failures are logged and never propagated.
type Notifier interface {
	NotifyFileChanged(path string) error
	Invalidate(family string) error
}

// NopNotifier is a Notifier that does nothing.
type NopNotifier struct{}

func (NopNotifier) NotifyFileChanged(string) error { return nil }
func (NopNotifier) Invalidate(string) error        { return nil }

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

// Orchestrator applies key updates across a resource family.
type Orchestrator struct {
	finder   *discovery.Finder
	resolver *langconfig.Resolver
	store    *resx.Store
	notifier Notifier
	log      zerolog.Logger

	// workers bounds the number of concurrent file writes.
	workers int
}

// New returns an Orchestrator. A nil notifier degrades to NopNotifier.
func New(finder *discovery.Finder, resolver *langconfig.Resolver, store *resx.Store, notifier Notifier, log zerolog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		finder:   finder,
		resolver: resolver,
		store:    store,
		notifier: notifier,
		log:      log,
		workers:  2,
	}
}

// CanExecute reports whether an update for the given family and key can
// run at all. Language resolution itself never fails (an empty family
// still resolves to a default pair), so this mostly guards against empty
// input and malformed keys before any I/O happens.
func (o *Orchestrator) CanExecute(baseName, key string) bool {
	return baseName != "" && key != "" && resx.ValidKey(key)
}

// AddKey discovers the family, resolves its language configuration, and
// applies the write(s). It returns true only when every target file was
// durably updated.
func (o *Orchestrator) AddKey(ctx context.Context, baseName, key, primaryValue, secondaryValue string) bool {
	if !o.CanExecute(baseName, key) {
		o.log.Warn().Str("family", baseName).Str("key", key).Msg("update rejected by precondition check")
		return false
	}
	cfg := o.resolver.Resolve(o.finder.FindFiles(baseName))
	return o.Apply(ctx, baseName, cfg, key, primaryValue, secondaryValue)
}

// writeTask is one pending store write.
type writeTask struct {
	path    string
	key     string
	value   string
	comment string
}

// Apply writes the key into the file(s) selected by the resolved
// configuration:
//
//   - two bound files: the primary value goes to the primary file and the
//     secondary value (when supplied) to the secondary file, as two
//     independent writes;
//   - one file (or none yet): a single write carries the primary value,
//     with the secondary value encoded as the entry's comment.
//
// The overall result is the logical AND of the individual writes. On
// success the designer collaborator is notified per file and the family's
// cached analysis is invalidated; those notifications are fire-and-forget.
func (o *Orchestrator) Apply(ctx context.Context, baseName string, cfg langconfig.Config, key, primaryValue, secondaryValue string) bool {
	var tasks []writeTask
	if cfg.HasMultipleLanguages {
		tasks = append(tasks, writeTask{path: cfg.PrimaryFile.Path, key: key, value: primaryValue})
		if secondaryValue != "" && cfg.SecondaryFile != nil {
			tasks = append(tasks, writeTask{path: cfg.SecondaryFile.Path, key: key, value: secondaryValue})
		}
	} else {
		path := o.finder.DefaultPath(baseName)
		if cfg.PrimaryFile != nil {
			path = cfg.PrimaryFile.Path
		}
		tasks = append(tasks, writeTask{path: path, key: key, value: primaryValue, comment: secondaryValue})
	}

	ok := o.runWrites(ctx, tasks)
	if !ok {
		o.log.Warn().Str("family", baseName).Str("key", key).Msg("update failed")
		return false
	}

	// Notifications are abandoned on cancellation but a completed write
	// never is — the files are already durable at this point.
	if ctx.Err() != nil {
		return true
	}
	for _, t := range tasks {
		if err := o.notifier.NotifyFileChanged(t.path); err != nil {
			o.log.Warn().Str("path", t.path).Err(err).Msg("designer notification failed")
		}
	}
	if err := o.notifier.Invalidate(baseName); err != nil {
		o.log.Warn().Str("family", baseName).Err(err).Msg("cache invalidation failed")
	}
	return true
}

// runWrites dispatches the writes to a bounded worker pool and waits for
// all of them. Cancellation is honored between dispatches only: a write
// already in flight runs to completion or failure, never stops mid-file.
func (o *Orchestrator) runWrites(ctx context.Context, tasks []writeTask) bool {
	if len(tasks) == 0 {
		return false
	}

	workers := o.workers
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	results := make([]bool, len(tasks))

	for i, t := range tasks {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(i int, t writeTask) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = o.store.AddEntry(t.path, t.key, t.value, t.comment)
		}(i, t)
	}
	wg.Wait()

	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}
