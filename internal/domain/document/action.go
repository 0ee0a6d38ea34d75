package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/printshop/backend/internal/domain/shared"
)

// ActionType names an editor instruction
type ActionType string

const (
	ActionRotatePage   ActionType = "rotate_page"
	ActionDeletePage   ActionType = "delete_page"
	ActionReorderPages ActionType = "reorder_pages"
	ActionAddText      ActionType = "add_text"
	ActionReplaceText  ActionType = "replace_text"
)

// IsStructural reports whether the action changes the page set or order
func (t ActionType) IsStructural() bool {
	return t == ActionDeletePage || t == ActionReorderPages
}

// DefaultRotation is applied when a rotate action omits degrees
const DefaultRotation = 90

// Action is one editor instruction. Which fields are meaningful depends on Type.
type Action struct {
	Type      ActionType `json:"type" validate:"required,oneof=rotate_page delete_page reorder_pages add_text replace_text"`
	PageIndex *int       `json:"pageIndex,omitempty"`
	Degrees   int        `json:"degrees,omitempty"`
	NewOrder  []int      `json:"newOrder,omitempty"`
	Text      string     `json:"text,omitempty" validate:"max=2000"`
	X         float64    `json:"x,omitempty"`
	Y         float64    `json:"y,omitempty"`
	Size      float64    `json:"size,omitempty" validate:"gte=0,lte=400"`
	From      string     `json:"from,omitempty" validate:"max=500"`
	To        string     `json:"to,omitempty" validate:"max=500"`
}

// Page returns the action's page index, or -1 when absent
func (a Action) Page() int {
	if a.PageIndex == nil {
		return -1
	}
	return *a.PageIndex
}

var validate = validator.New()

// Validate checks the action is well-formed. Page indices are not checked
// against a document here; out-of-range indices are skipped by the engine.
func (a Action) Validate() error {
	if err := validate.Struct(a); err != nil {
		return shared.WrapDomainError(shared.CodeValidation, fmt.Sprintf("invalid %s action", a.Type), err)
	}

	switch a.Type {
	case ActionRotatePage:
		if a.PageIndex == nil {
			return shared.NewValidationError("rotate_page requires pageIndex")
		}
		if a.Degrees%90 != 0 {
			return shared.NewValidationError(fmt.Sprintf("rotate_page degrees must be a multiple of 90, got %d", a.Degrees))
		}
	case ActionDeletePage:
		if a.PageIndex == nil {
			return shared.NewValidationError("delete_page requires pageIndex")
		}
	case ActionReorderPages:
		if len(a.NewOrder) == 0 {
			return shared.NewValidationError("reorder_pages requires newOrder")
		}
	case ActionAddText:
		if a.PageIndex == nil {
			return shared.NewValidationError("add_text requires pageIndex")
		}
		if strings.TrimSpace(a.Text) == "" {
			return shared.NewValidationError("add_text requires text")
		}
	case ActionReplaceText:
		if a.From == "" {
			return shared.NewValidationError("replace_text requires from")
		}
	}
	return nil
}

// ParseActions decodes and validates a JSON action list
func ParseActions(raw []byte) ([]Action, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "invalid instructions format", err)
	}
	if err := ValidateActions(actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// MarshalActions validates actions and encodes them in the form ParseActions reads
func MarshalActions(actions []Action) (json.RawMessage, error) {
	if err := ValidateActions(actions); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actions: %w", err)
	}
	return raw, nil
}

// ValidateActions validates every action, reporting the first failure with its position
func ValidateActions(actions []Action) error {
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return shared.WrapDomainError(shared.CodeValidation, fmt.Sprintf("action %d", i), err)
		}
	}
	return nil
}

// RotatePage builds a rotate_page action
func RotatePage(index, degrees int) Action {
	return Action{Type: ActionRotatePage, PageIndex: &index, Degrees: degrees}
}

// DeletePage builds a delete_page action
func DeletePage(index int) Action {
	return Action{Type: ActionDeletePage, PageIndex: &index}
}

// ReorderPages builds a reorder_pages action
func ReorderPages(order ...int) Action {
	return Action{Type: ActionReorderPages, NewOrder: order}
}

// AddText builds an add_text action
func AddText(index int, text string, x, y, size float64) Action {
	return Action{Type: ActionAddText, PageIndex: &index, Text: text, X: x, Y: y, Size: size}
}

// ReplaceText builds a replace_text action
func ReplaceText(from, to string) Action {
	return Action{Type: ActionReplaceText, From: from, To: to}
}
