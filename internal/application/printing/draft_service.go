package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	pdfContentType = "application/pdf"
	// sent by clients that do not know the file type
	binaryContentType = "application/octet-stream"
)

// DraftService handles uploads and edits of drafts
type DraftService struct {
	eventSource
	drafts   printing.DraftRepository
	txScope  TransactionScope
	store    ObjectStore
	loader   DocumentLoader
	engine   *document.Engine
	enqueuer Enqueuer
	settings Settings
}

// NewDraftService creates a new DraftService
func NewDraftService(
	drafts printing.DraftRepository,
	txScope TransactionScope,
	store ObjectStore,
	loader DocumentLoader,
	engine *document.Engine,
	enqueuer Enqueuer,
	settings Settings,
	log *zap.Logger,
) *DraftService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftService{
		eventSource: eventSource{logger: log},
		drafts:      drafts,
		txScope:     txScope,
		store:       store,
		loader:      loader,
		engine:      engine,
		enqueuer:    enqueuer,
		settings:    settings.withDefaults(),
	}
}

// Create stores the uploaded original, creates the draft in uploaded status
// and schedules its conversion
func (s *DraftService) Create(ctx context.Context, userID uuid.UUID, req CreateDraftRequest) (*DraftResponse, error) {
	if len(req.Data) == 0 {
		return nil, shared.NewValidationError("no file uploaded")
	}
	source := printing.DraftSource(req.Source)
	if !source.IsValid() {
		return nil, shared.NewValidationError("invalid or missing source ('shop' or 'editor' required)")
	}

	fileType := req.ContentType
	if fileType == "" || fileType == binaryContentType {
		fileType = req.FileName
	}
	originalPath := s.settings.originalPath(userID, req.FileName)

	draft, err := printing.NewDraft(userID, source, req.FileName, fileType, originalPath)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upload(ctx, originalPath, req.Data, req.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	err = s.txScope.Execute(ctx, func(repos TxRepositories) error {
		if err := repos.Drafts().Save(ctx, draft); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		_, err := s.enqueuer.EnqueueWith(ctx, repos.WorkItems(), queue.ProcessDraft{
			DraftID:      draft.ID,
			UserID:       userID,
			InputFileRef: originalPath,
		})
		return err
	})
	if err != nil {
		s.discard(ctx, originalPath)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Draft uploaded",
		zap.String("draft_id", draft.ID.String()),
		zap.String("source", string(source)),
		zap.String("file_name", req.FileName),
		zap.Int("size", len(req.Data)),
	)
	s.publish(ctx, draft)

	resp := ToDraftResponse(draft)
	return &resp, nil
}

// Get returns a draft owned by userID
func (s *DraftService) Get(ctx context.Context, userID, draftID uuid.UUID) (*DraftResponse, error) {
	draft, err := s.findOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	resp := ToDraftResponse(draft)
	return &resp, nil
}

// ListByUser lists a user's drafts, newest first
func (s *DraftService) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]DraftResponse, error) {
	drafts, err := s.drafts.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return ToDraftResponses(drafts), nil
}

// ApplyEdits runs an instruction list against the draft's current PDF.
// The draft must be in ready_for_preview; its status only changes when the
// request asks to advance to checkout.
func (s *DraftService) ApplyEdits(ctx context.Context, userID, draftID uuid.UUID, req EditDraftRequest) (*EditDraftResponse, error) {
	draft, err := s.findOwned(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if err := draft.EnsureEditable(); err != nil {
		return nil, err
	}
	if err := document.ValidateActions(req.Instructions); err != nil {
		return nil, err
	}

	if req.Async {
		return s.enqueueEdits(ctx, userID, draftID, req)
	}

	data, err := s.store.Download(ctx, draft.ConvertedFileRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft document: %w", err)
	}
	doc, err := s.loader.Load(ctx, data)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.Apply(ctx, doc, req.Instructions)
	if err != nil {
		return nil, err
	}

	changed := result.Applied > 0
	newPath := draft.ConvertedFileRef
	if changed {
		newPath = s.settings.convertedPath(draft)
		if err := s.store.Upload(ctx, newPath, result.Data, pdfContentType); err != nil {
			return nil, fmt.Errorf("failed to store edited document: %w", err)
		}
	}

	var saved *printing.Draft
	err = s.txScope.Execute(ctx, func(repos TxRepositories) error {
		current, err := repos.Drafts().FindByIDForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if err := current.ExpectVersion("draft", draft.Version); err != nil {
			return err
		}
		if changed {
			if err := current.ApplyEditResult(newPath, result.PageCount); err != nil {
				return err
			}
		} else if err := current.EnsureEditable(); err != nil {
			return err
		}
		if req.Advance {
			if err := current.AdvanceToCheckout(); err != nil {
				return err
			}
		}
		if changed || req.Advance {
			if err := repos.Drafts().Save(ctx, current); err != nil {
				return fmt.Errorf("failed to save draft: %w", err)
			}
		}
		saved = current
		return nil
	})
	if err != nil {
		if changed {
			s.discard(ctx, newPath)
		}
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Draft edited",
		zap.String("draft_id", draftID.String()),
		zap.Int("actions", len(req.Instructions)),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.SkippedCount()),
		zap.Int("pages", saved.PageCount),
		zap.Bool("rebuilt", result.Rebuilt),
	)
	s.publish(ctx, saved)

	return &EditDraftResponse{
		Draft:        ToDraftResponse(saved),
		Applied:      result.Applied,
		Replacements: result.Replacements,
		Skipped:      result.Skipped,
	}, nil
}

// enqueueEdits moves the draft into processing and schedules the edit in
// the same transaction
func (s *DraftService) enqueueEdits(ctx context.Context, userID, draftID uuid.UUID, req EditDraftRequest) (*EditDraftResponse, error) {
	if req.Advance {
		return nil, shared.NewValidationError("advance cannot be combined with a queued edit")
	}
	raw, err := document.MarshalActions(req.Instructions)
	if err != nil {
		return nil, err
	}

	var (
		saved *printing.Draft
		item  *queue.WorkItem
	)
	err = s.txScope.Execute(ctx, func(repos TxRepositories) error {
		current, err := repos.Drafts().FindByIDForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if err := current.EnsureEditable(); err != nil {
			return err
		}
		if err := current.MarkProcessing(); err != nil {
			return err
		}
		if err := repos.Drafts().Save(ctx, current); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		item, err = s.enqueuer.EnqueueWith(ctx, repos.WorkItems(), queue.ProcessDraft{
			DraftID:      draftID,
			UserID:       userID,
			InputFileRef: current.ConvertedFileRef,
			Actions:      raw,
		})
		if err != nil {
			return err
		}
		saved = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, saved)
	return &EditDraftResponse{
		Draft:      ToDraftResponse(saved),
		Queued:     true,
		WorkItemID: &item.ID,
	}, nil
}

// AdvanceToCheckout moves a previewed draft to ready_for_checkout
func (s *DraftService) AdvanceToCheckout(ctx context.Context, userID, draftID uuid.UUID) (*DraftResponse, error) {
	var saved *printing.Draft
	err := s.txScope.Execute(ctx, func(repos TxRepositories) error {
		draft, err := repos.Drafts().FindByIDForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if !draft.IsOwnedBy(userID) {
			return shared.NewNotFoundError("draft", draftID)
		}
		if err := draft.AdvanceToCheckout(); err != nil {
			return err
		}
		if err := repos.Drafts().Save(ctx, draft); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		saved = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, saved)
	resp := ToDraftResponse(saved)
	return &resp, nil
}

// Delete removes a draft and its stored files. Printed drafts cannot be deleted.
func (s *DraftService) Delete(ctx context.Context, userID, draftID uuid.UUID) error {
	var deleted *printing.Draft
	err := s.txScope.Execute(ctx, func(repos TxRepositories) error {
		draft, err := repos.Drafts().FindByIDForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if !draft.IsOwnedBy(userID) {
			return shared.NewNotFoundError("draft", draftID)
		}
		if err := draft.EnsureDeletable(); err != nil {
			return err
		}
		if err := repos.Drafts().Delete(ctx, draftID); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
		deleted = draft
		return nil
	})
	if err != nil {
		return err
	}

	s.discard(ctx, deleted.OriginalFileRef)
	if deleted.ConvertedFileRef != "" {
		s.discard(ctx, deleted.ConvertedFileRef)
	}
	logger.Enrich(ctx, s.logger).Info("Draft deleted", zap.String("draft_id", draftID.String()))
	return nil
}

func (s *DraftService) findOwned(ctx context.Context, userID, draftID uuid.UUID) (*printing.Draft, error) {
	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !draft.IsOwnedBy(userID) {
		return nil, shared.NewNotFoundError("draft", draftID)
	}
	return draft, nil
}

// discard removes an object that is no longer referenced. Failures are logged only.
func (s *DraftService) discard(ctx context.Context, path string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), path); err != nil && !errors.Is(err, shared.ErrNotFound) {
		logger.Enrich(ctx, s.logger).Warn("Failed to remove stored object",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
