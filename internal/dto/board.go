// Package dto holds the request and response shapes shared by the HTTP and
// MCP adapters.
package dto

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// BoardView is the wire representation of a live board.
type BoardView struct {
	ID       string           `json:"id"`
	Topic    string           `json:"topic,omitempty"`
	Status   domain.Status    `json:"status"`
	Document *domain.Document `json:"document"`
}

// NewBoardView snapshots b.
func NewBoardView(b *boardgen.Board) BoardView {
	return BoardView{
		ID:       b.ID(),
		Topic:    b.Topic(),
		Status:   b.Status(),
		Document: b.Document(),
	}
}

// CreateBoardRequest creates a blank board.
type CreateBoardRequest struct {
	ID       string `json:"id" mapstructure:"id" validate:"omitempty,max=128,excludesall=/\\"`
	Topic    string `json:"topic" mapstructure:"topic" validate:"max=256"`
	Sections int    `json:"sections" mapstructure:"sections" validate:"min=1,max=20"`
	Cells    int    `json:"cells" mapstructure:"cells" validate:"min=1,max=20"`
	Scale    int    `json:"scale" mapstructure:"scale" validate:"min=1"`
}

// GenerateRequest starts a generation.
type GenerateRequest struct {
	Kind    string `json:"kind" mapstructure:"kind" validate:"required,oneof=board section cell refresh"`
	Section int    `json:"section" mapstructure:"section" validate:"min=0"`
	Cell    int    `json:"cell" mapstructure:"cell" validate:"min=0"`
}

// Scope converts the request to a domain scope.
func (r GenerateRequest) Scope() domain.Scope {
	return domain.Scope{Kind: domain.ScopeKind(r.Kind), Section: r.Section, Cell: r.Cell}
}

// GenerateResponse acknowledges a started generation.
type GenerateResponse struct {
	Token domain.Token `json:"token"`
	Scope domain.Scope `json:"scope"`
}

// RescaleRequest sets a new point scale.
type RescaleRequest struct {
	Scale int `json:"scale" mapstructure:"scale" validate:"min=1"`
}

// EditCellRequest patches one cell. Nil fields are left unchanged.
type EditCellRequest struct {
	PromptText   *string `json:"prompt_text,omitempty" mapstructure:"prompt_text" validate:"omitempty,max=1024"`
	RevealedText *string `json:"revealed_text,omitempty" mapstructure:"revealed_text" validate:"omitempty,max=1024"`
	Answered     *bool   `json:"answered,omitempty" mapstructure:"answered"`
	Voided       *bool   `json:"voided,omitempty" mapstructure:"voided"`
}

// TitleRequest renames a section.
type TitleRequest struct {
	Title string `json:"title" mapstructure:"title" validate:"required,max=256"`
}

// ErrInvalidRequest wraps every validation failure.
var ErrInvalidRequest = errors.New("invalid request")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks v against its struct tags.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// Apply runs the patch against one cell of b.
func (r EditCellRequest) Apply(ctx context.Context, b *boardgen.Board, section, cell int) error {
	if r.PromptText == nil && r.RevealedText == nil && r.Answered == nil && r.Voided == nil {
		return fmt.Errorf("%w: empty patch", ErrInvalidRequest)
	}
	doc := b.Document()
	sections, cells := doc.Shape()
	if err := domain.CellScope(section, cell).Validate(sections, cells); err != nil {
		return err
	}

	if r.PromptText != nil || r.RevealedText != nil {
		current := doc.CellAt(section, cell)
		prompt, revealed := current.PromptText, current.RevealedText
		if r.PromptText != nil {
			prompt = *r.PromptText
		}
		if r.RevealedText != nil {
			revealed = *r.RevealedText
		}
		if err := b.EditCell(ctx, section, cell, prompt, revealed); err != nil {
			return err
		}
	}
	if r.Answered != nil {
		if err := b.SetAnswered(ctx, section, cell, *r.Answered); err != nil {
			return err
		}
	}
	if r.Voided != nil {
		if err := b.SetVoided(ctx, section, cell, *r.Voided); err != nil {
			return err
		}
	}
	return nil
}
