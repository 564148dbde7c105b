package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/model"
)

// Workspace holds the session's analyzed documents keyed by filename. It
// tracks the active document, a tombstone set of deleted names that are
// never reprocessed, and in-flight ingest reservations so two uploads of
// the same name cannot both run extraction (first writer wins).
type Workspace struct {
	mu           sync.Mutex
	docs         map[string]*model.Document
	deleted      map[string]struct{}
	inflight     map[string]struct{}
	current      string
	maxDocuments int // 0 = unlimited
}

func NewWorkspace(cfg *config.StoreConfig) *Workspace {
	max := 0
	if cfg != nil && cfg.MaxDocuments > 0 {
		max = cfg.MaxDocuments
	}
	slog.Info("workspace initialized", "max_documents", max)
	return &Workspace{
		docs:         make(map[string]*model.Document),
		deleted:      make(map[string]struct{}),
		inflight:     make(map[string]struct{}),
		maxDocuments: max,
	}
}

// BeginIngest atomically reserves a name for ingestion. It fails when the
// name was deleted this session, is already processed, is currently being
// ingested by another request, or the workspace is at its cap. A successful
// reservation must be finished with CompleteIngest or AbortIngest.
func (w *Workspace) BeginIngest(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.deleted[name]; ok {
		return ErrDeleted
	}
	if _, ok := w.docs[name]; ok {
		return ErrAlreadyProcessed
	}
	if _, ok := w.inflight[name]; ok {
		return ErrIngestInProgress
	}
	if w.maxDocuments > 0 && len(w.docs)+len(w.inflight) >= w.maxDocuments {
		return ErrWorkspaceFull
	}

	w.inflight[name] = struct{}{}
	return nil
}

// CompleteIngest inserts the finished record and makes it the active
// document. The caller must hold the reservation from BeginIngest.
func (w *Workspace) CompleteIngest(doc *model.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.inflight, doc.Name)
	w.docs[doc.Name] = doc
	w.current = doc.Name
}

// AbortIngest releases a reservation after a failed extraction.
func (w *Workspace) AbortIngest(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, name)
}

// Get returns a snapshot of the record for a name. Callers read the result
// after the lock is gone, so handing out the stored pointer would race with
// AttachDeadlines.
func (w *Workspace) Get(name string) (*model.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[name]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// List returns snapshots of all records ordered by ingestion time.
func (w *Workspace) List() []*model.Document {
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make([]*model.Document, 0, len(w.docs))
	for _, d := range w.docs {
		docs = append(docs, d.Clone())
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}

// Current returns the active document name, or "" when none is active.
func (w *Workspace) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Select makes an existing document the active one.
func (w *Workspace) Select(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.docs[name]; !ok {
		return ErrNotFound
	}
	w.current = name
	return nil
}

// Delete removes the record and marks the name as deleted for the rest of
// the session. Deleting the active document clears the selection; callers
// decide any fallback.
func (w *Workspace) Delete(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.docs[name]; !ok {
		return ErrNotFound
	}
	delete(w.docs, name)
	w.deleted[name] = struct{}{}
	if w.current == name {
		w.current = ""
	}
	return nil
}

// IsDeleted reports whether a name carries a session tombstone.
func (w *Workspace) IsDeleted(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.deleted[name]
	return ok
}

// AttachDeadlines sets the record's deadlines exactly once. A second call
// fails; the caller must guard re-extraction rather than overwrite.
func (w *Workspace) AttachDeadlines(name string, deadlines []model.Deadline) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.docs[name]
	if !ok {
		return ErrNotFound
	}
	if doc.HasDeadlines() {
		return ErrDeadlinesAttached
	}
	if deadlines == nil {
		deadlines = []model.Deadline{}
	}
	doc.Deadlines = deadlines
	return nil
}

// Count returns the number of processed documents.
func (w *Workspace) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.docs)
}
