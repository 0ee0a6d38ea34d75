package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultOverlaySize is the font size used for replacement text when the
// matched fragment has no usable height.
const DefaultOverlaySize = 12.0

// SkippedAction records an instruction the engine ignored
type SkippedAction struct {
	Position int        `json:"position"`
	Type     ActionType `json:"type"`
	Reason   string     `json:"reason"`
}

// Result is the outcome of applying an action list
type Result struct {
	Data         []byte
	PageCount    int
	Rebuilt      bool
	Applied      int
	Replacements int
	Skipped      []SkippedAction
}

// SkippedCount returns how many actions were ignored
func (r *Result) SkippedCount() int {
	return len(r.Skipped)
}

// Engine applies action lists to documents.
//
// Actions run in a fixed order regardless of their position in the list:
// page-local actions (rotate, add and replace text) against the original
// indices, then deletions in descending index order, then the last
// reorder, whose indices refer to the pages left after deletion.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Apply runs actions against doc and serializes the result. A single
// out-of-range or malformed instruction is skipped and reported in
// Result.Skipped; only document failures abort the run.
func (e *Engine) Apply(ctx context.Context, doc Document, actions []Action) (*Result, error) {
	if doc == nil {
		return nil, shared.NewValidationError("document is required")
	}

	res := &Result{}
	n := doc.PageCount()
	masked := make(map[fragmentKey]bool)

	// Page-local actions never change the page count, so the original
	// indices stay valid throughout this pass.
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch a.Type {
		case ActionRotatePage:
			if !e.inRange(res, i, a, n) {
				continue
			}
			degrees := a.Degrees
			if degrees == 0 {
				degrees = DefaultRotation
			}
			if degrees%90 != 0 {
				e.skip(res, i, a, fmt.Sprintf("rotation %d is not a multiple of 90", degrees))
				continue
			}
			if err := doc.RotatePage(a.Page(), degrees); err != nil {
				return nil, fmt.Errorf("failed to rotate page %d: %w", a.Page(), err)
			}
			res.Applied++
		case ActionAddText:
			if !e.inRange(res, i, a, n) {
				continue
			}
			if strings.TrimSpace(a.Text) == "" {
				e.skip(res, i, a, "empty text")
				continue
			}
			size := a.Size
			if size <= 0 {
				size = DefaultOverlaySize
			}
			if err := doc.DrawText(a.Page(), a.Text, a.X, a.Y, size); err != nil {
				return nil, fmt.Errorf("failed to add text on page %d: %w", a.Page(), err)
			}
			res.Applied++
		case ActionReplaceText:
			if a.From == "" {
				e.skip(res, i, a, "empty search string")
				continue
			}
			count, err := e.replaceText(doc, n, a.From, a.To, masked)
			if err != nil {
				return nil, err
			}
			res.Replacements += count
			res.Applied++
		case ActionDeletePage, ActionReorderPages:
			// structural, handled below
		default:
			e.skip(res, i, a, "unknown action type")
		}
	}

	order, structural := e.resolveOrder(res, actions, n)
	if structural {
		if len(order) == 0 {
			return nil, shared.NewValidationError("instructions would delete every page")
		}
		if err := doc.Rebuild(order); err != nil {
			return nil, fmt.Errorf("failed to rebuild document: %w", err)
		}
		res.Rebuilt = true
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	res.Data = data
	res.PageCount = doc.PageCount()

	if len(res.Skipped) > 0 {
		e.logger.Warn("skipped document actions",
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("applied", res.Applied),
		)
	}
	return res, nil
}

// resolveOrder computes the final page order, expressed as original page
// indices, from the delete and reorder actions.
func (e *Engine) resolveOrder(res *Result, actions []Action, n int) ([]int, bool) {
	seen := make(map[int]bool)
	var deletions []int
	lastReorder := -1

	for i, a := range actions {
		switch a.Type {
		case ActionDeletePage:
			if !e.inRange(res, i, a, n) {
				continue
			}
			if seen[a.Page()] {
				continue
			}
			seen[a.Page()] = true
			deletions = append(deletions, a.Page())
			res.Applied++
		case ActionReorderPages:
			lastReorder = i
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	// Descending so an earlier removal never shifts a later one.
	sort.Sort(sort.Reverse(sort.IntSlice(deletions)))
	for _, idx := range deletions {
		order = append(order[:idx], order[idx+1:]...)
	}
	structural := len(deletions) > 0

	if lastReorder >= 0 {
		for i, a := range actions {
			if a.Type == ActionReorderPages && i != lastReorder {
				e.skip(res, i, a, "superseded by a later reorder_pages")
			}
		}
		a := actions[lastReorder]
		if !isPermutation(a.NewOrder, len(order)) {
			e.skip(res, lastReorder, a, fmt.Sprintf("newOrder is not a permutation of 0..%d", len(order)-1))
		} else {
			reordered := make([]int, len(order))
			for pos, idx := range a.NewOrder {
				reordered[pos] = order[idx]
			}
			order = reordered
			structural = true
			res.Applied++
		}
	}

	return order, structural
}

// fragmentKey identifies a fragment that is already covered by a mask.
// Masked text stays in the page content, so later reads still return it.
type fragmentKey struct {
	page int
	text string
	x, y float64
}

func (e *Engine) replaceText(doc Document, n int, from, to string, masked map[fragmentKey]bool) (int, error) {
	count := 0
	for page := 0; page < n; page++ {
		fragments, err := doc.TextFragments(page)
		if err != nil {
			return count, fmt.Errorf("failed to read text on page %d: %w", page, err)
		}
		for _, f := range fragments {
			if !strings.Contains(f.Text, from) {
				continue
			}
			key := fragmentKey{page: page, text: f.Text, x: f.X, y: f.Y}
			if masked[key] {
				continue
			}
			masked[key] = true
			size := DefaultOverlaySize
			if f.Height > 0 {
				size = f.Height
			}
			if err := doc.MaskRect(page, f.Bounds()); err != nil {
				return count, fmt.Errorf("failed to mask text on page %d: %w", page, err)
			}
			replacement := strings.ReplaceAll(f.Text, from, to)
			if strings.TrimSpace(replacement) != "" {
				if err := doc.DrawText(page, replacement, f.X, f.Y, size); err != nil {
					return count, fmt.Errorf("failed to overlay text on page %d: %w", page, err)
				}
			}
			count++
		}
	}
	return count, nil
}

func (e *Engine) inRange(res *Result, pos int, a Action, n int) bool {
	idx := a.Page()
	if idx < 0 || idx >= n {
		e.skip(res, pos, a, fmt.Sprintf("page index %d out of range for %d pages", idx, n))
		return false
	}
	return true
}

func (e *Engine) skip(res *Result, pos int, a Action, reason string) {
	e.logger.Warn("skipping document action",
		zap.Int("position", pos),
		zap.String("type", string(a.Type)),
		zap.String("reason", reason),
	)
	res.Skipped = append(res.Skipped, SkippedAction{Position: pos, Type: a.Type, Reason: reason})
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
