package printing

import (
	"context"
	"fmt"

	"github.com/printshop/backend/internal/domain/document"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProcessDraftHandler consumes process-draft work items. It converts a new
// upload to PDF, or applies a queued edit, and makes the draft previewable.
type ProcessDraftHandler struct {
	eventSource
	drafts    printing.DraftRepository
	store     ObjectStore
	converter Converter
	loader    DocumentLoader
	engine    *document.Engine
	settings  Settings
}

// NewProcessDraftHandler creates a new ProcessDraftHandler
func NewProcessDraftHandler(
	drafts printing.DraftRepository,
	store ObjectStore,
	converter Converter,
	loader DocumentLoader,
	engine *document.Engine,
	settings Settings,
	log *zap.Logger,
) *ProcessDraftHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessDraftHandler{
		eventSource: eventSource{logger: log},
		drafts:      drafts,
		store:       store,
		converter:   converter,
		loader:      loader,
		engine:      engine,
		settings:    settings.withDefaults(),
	}
}

// Handle implements the work item handler contract
func (h *ProcessDraftHandler) Handle(ctx context.Context, _ *queue.WorkItem, task queue.Task) error {
	t, ok := task.(queue.ProcessDraft)
	if !ok {
		return shared.NewValidationError(fmt.Sprintf("process-draft handler received %s", task.Kind()))
	}
	return h.Process(ctx, t)
}

// stage names the step that failed, which decides the draft's failure status
type stage int

const (
	stageConvert stage = iota
	stageEdit
)

// Process runs one attempt. On failure the draft is moved to its failure
// status and the error is returned so the coordinator can retry.
func (h *ProcessDraftHandler) Process(ctx context.Context, t queue.ProcessDraft) error {
	log := logger.Enrich(ctx, h.logger).With(zap.String("draft_id", t.DraftID.String()))

	draft, err := h.drafts.FindByID(ctx, t.DraftID)
	if err != nil {
		return err
	}
	if draft.IsFrozen() {
		return shared.NewForbiddenError("draft is frozen and can no longer be processed")
	}

	if alreadyProcessed(draft, t) {
		log.Info("Draft already processed, skipping", zap.String("input_file_ref", t.InputFileRef))
		return nil
	}
	converting := draft.NeedsConversion()

	if err := h.begin(ctx, draft, converting); err != nil {
		return err
	}

	ref, pages, failedAt, err := h.run(ctx, draft, converting, t.Actions)
	if err != nil {
		h.markFailed(ctx, log, draft, failedAt)
		return err
	}

	if err := draft.MarkReady(ref, pages); err != nil {
		return err
	}
	if err := h.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	log.Info("Draft is ready for preview",
		zap.String("converted_file_ref", ref),
		zap.Int("pages", pages),
	)
	h.publish(ctx, draft)
	return nil
}

// alreadyProcessed reports whether an earlier delivery of t committed its
// result. Each processing run writes a new converted file, so a task is done
// once the draft no longer points at the file the task was meant to read.
func alreadyProcessed(draft *printing.Draft, t queue.ProcessDraft) bool {
	switch t.InputFileRef {
	case "":
		return !draft.NeedsConversion() && draft.Status == printing.DraftStatusReadyForPreview
	case draft.OriginalFileRef:
		return !draft.NeedsConversion()
	default:
		return draft.ConvertedFileRef != t.InputFileRef
	}
}

func (h *ProcessDraftHandler) begin(ctx context.Context, draft *printing.Draft, converting bool) error {
	var err error
	switch {
	case converting && draft.Status != printing.DraftStatusConverting:
		err = draft.MarkConverting()
	case !converting && draft.Status != printing.DraftStatusProcessing:
		err = draft.MarkProcessing()
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if err := h.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	h.publish(ctx, draft)
	return nil
}

// run produces the new PDF and returns its storage path and page count
func (h *ProcessDraftHandler) run(ctx context.Context, draft *printing.Draft, converting bool, rawActions []byte) (string, int, stage, error) {
	var (
		data []byte
		err  error
	)
	if converting {
		data, err = h.convert(ctx, draft)
		if err != nil {
			return "", 0, stageConvert, err
		}
	} else {
		data, err = h.store.Download(ctx, draft.ConvertedFileRef)
		if err != nil {
			return "", 0, stageEdit, fmt.Errorf("failed to load draft document: %w", err)
		}
	}

	actions, err := document.ParseActions(rawActions)
	if err != nil {
		return "", 0, stageEdit, err
	}
	doc, err := h.loader.Load(ctx, data)
	if err != nil {
		if converting {
			return "", 0, stageConvert, shared.NewConversionError(h.sourceType(draft), err)
		}
		return "", 0, stageEdit, err
	}

	pages := doc.PageCount()
	if len(actions) > 0 {
		result, err := h.engine.Apply(ctx, doc, actions)
		if err != nil {
			return "", 0, stageEdit, err
		}
		data, pages = result.Data, result.PageCount
	}

	ref := h.settings.convertedPath(draft)
	if err := h.store.Upload(ctx, ref, data, pdfContentType); err != nil {
		return "", 0, stageEdit, fmt.Errorf("failed to store processed document: %w", err)
	}
	return ref, pages, stageEdit, nil
}

func (h *ProcessDraftHandler) convert(ctx context.Context, draft *printing.Draft) ([]byte, error) {
	src, err := h.store.Download(ctx, draft.OriginalFileRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load original upload: %w", err)
	}
	return h.converter.Convert(ctx, src, h.sourceType(draft))
}

func (h *ProcessDraftHandler) sourceType(draft *printing.Draft) string {
	if draft.OriginalContentType != "" {
		return draft.OriginalContentType
	}
	return draft.OriginalFileName
}

// markFailed records the failure on the draft. The write uses a detached
// context so a timed-out attempt still leaves the draft in a failure state.
func (h *ProcessDraftHandler) markFailed(ctx context.Context, log *zap.Logger, draft *printing.Draft, failedAt stage) {
	var err error
	if failedAt == stageConvert {
		err = draft.MarkConversionFailed()
	} else {
		err = draft.MarkFailed()
	}
	if err != nil {
		log.Error("Failed to mark draft as failed", zap.Error(err))
		return
	}
	writeCtx := context.WithoutCancel(ctx)
	if err := h.drafts.Save(writeCtx, draft); err != nil {
		log.Error("Failed to save failed draft", zap.Error(err))
		return
	}
	log.Warn("Draft processing failed", zap.String("status", draft.Status.String()))
	h.publish(writeCtx, draft)
}
