package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/couchpush-cli/internal/assembler"
	"github.com/custodia-labs/couchpush-cli/internal/attachments"
	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// PushService runs one full push: assemble both document forests
// concurrently, reconcile revisions, gate on recorded errors, then
// submit a single bulk write.
type PushService struct {
	store     driven.DocumentStore
	validator driven.ScriptValidator
	reporter  *domain.Reporter
}

// PushResult summarises a run for the caller.
type PushResult struct {
	// DesignDocs and LooseDocs count assembled documents per forest.
	DesignDocs int
	LooseDocs  int

	// DocumentsPushed and Deletions count what the bulk write carried.
	DocumentsPushed int
	Deletions       int

	// Errors is the number of error diagnostics recorded.
	Errors int

	// Aborted is set when the pre-flight gate skipped the write.
	Aborted bool
}

// NewPushService creates a push service.
func NewPushService(store driven.DocumentStore, validator driven.ScriptValidator, reporter *domain.Reporter) *PushService {
	return &PushService{store: store, validator: validator, reporter: reporter}
}

// Push assembles the tree rooted at root and synchronises it with the
// remote store. A missing root is the only immediately fatal input;
// every other failure is collected and surfaces through the gate.
func (s *PushService) Push(ctx context.Context, root string) (*PushResult, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceMissing, root)
	}

	if err := s.store.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate store: %w", err)
	}

	designRoot, looseRoot := resolveLayout(root)
	logger.Info("design root: %s", designRoot)

	classifier := assembler.NewClassifier(s.validator, s.reporter)
	builder := assembler.NewBuilder(classifier, attachments.NewBuilder(s.reporter), s.reporter)
	reconciler := NewReconciler(s.store, s.reporter)

	result := &PushResult{}
	batch := &bulkBatch{}

	// The two pipelines share only the reporter and the batch; both
	// are safe for concurrent writers.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		docs := builder.BuildDesignDocs(ctx, designRoot)
		result.DesignDocs = len(docs)
		docs, deletions, err := reconciler.ReconcileDesign(ctx, docs)
		if err != nil {
			return // recorded on the reporter
		}
		batch.addDocs(s.reporter, docs)
		batch.addDeletions(deletions)
	}()

	if looseRoot != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs := builder.BuildLooseDocs(ctx, looseRoot, designRoot)
			result.LooseDocs = len(docs)
			docs, err := reconciler.ReconcileLoose(ctx, docs)
			if err != nil {
				return
			}
			batch.addDocs(s.reporter, docs)
		}()
	}
	wg.Wait()

	result.Errors = s.reporter.ErrorCount()
	if s.reporter.HasFailed() {
		result.Aborted = true
		return result, domain.ErrAborted
	}

	docs, deletions := batch.snapshot()
	if len(docs) == 0 && len(deletions) == 0 {
		logger.Info("nothing to push")
		return result, nil
	}

	results, err := s.store.BulkWrite(ctx, docs, deletions)
	if err != nil {
		s.reporter.Errorf(domain.KindRemote, "", "bulk write: %v", err)
		result.Errors = s.reporter.ErrorCount()
		return result, fmt.Errorf("bulk write: %w", err)
	}

	for _, res := range results {
		if !res.OK {
			s.reporter.Errorf(domain.KindRemote, res.ID, "%s: %s", res.ErrorType, res.Reason)
		}
	}

	result.DocumentsPushed = len(docs)
	result.Deletions = len(deletions)
	result.Errors = s.reporter.ErrorCount()
	if s.reporter.HasFailed() {
		return result, domain.ErrPushFailed
	}
	return result, nil
}

// resolveLayout applies the source-tree convention: a root named
// _design is itself the design folder; otherwise a _design child makes
// the root a mixed tree with loose documents beside it; failing both,
// the root is treated as the design folder directly.
func resolveLayout(root string) (designRoot, looseRoot string) {
	if filepath.Base(root) == assembler.DesignRootName {
		return root, ""
	}
	nested := filepath.Join(root, assembler.DesignRootName)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		return nested, root
	}
	return root, ""
}

// bulkBatch is the single outgoing request builder both pipelines
// append into; the mutex makes each append atomic.
type bulkBatch struct {
	mu        sync.Mutex
	docs      []json.RawMessage
	deletions []driven.Deletion
}

// addDocs serialises documents compactly and appends them. A document
// that fails to serialise is recorded and skipped.
func (b *bulkBatch) addDocs(reporter *domain.Reporter, docs []domain.Document) {
	raws := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			reporter.Errorf(domain.KindShape, doc.ID, "serialize document: %v", err)
			continue
		}
		raws = append(raws, raw)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = append(b.docs, raws...)
}

func (b *bulkBatch) addDeletions(deletions []driven.Deletion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletions = append(b.deletions, deletions...)
}

func (b *bulkBatch) snapshot() ([]json.RawMessage, []driven.Deletion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.docs, b.deletions
}
