// Package generation turns a task description into a validated, recorded command.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/cmdgen/internal/application/extract"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// Stage names a pipeline step.
type Stage string

const (
	StageComposing  Stage = "composing"
	StageInvoking   Stage = "invoking"
	StageExtracting Stage = "extracting"
	StageValidating Stage = "validating"
	StageAccepted   Stage = "accepted"
	StageRejected   Stage = "rejected"
	StageFailed     Stage = "failed"
)

const maxDetailLen = 200

// Pipeline orchestrates compose, invoke, extract and validate, and records
// every terminal state to history before returning.
type Pipeline struct {
	Composer  ports.PromptComposer
	Backend   ports.Backend
	Validator ports.SafetyValidator
	History   ports.HistoryStore
	Context   ports.ContextCollector
	Logger    ports.Logger

	Temperature float64
	MaxTokens   int

	// Clock and NewID are replaceable for tests.
	Clock func() time.Time
	NewID func() string
	// OnStage, when set, observes each stage transition.
	OnStage func(Stage)
}

// Generate runs one description through the pipeline. The error is non-nil
// only for missing dependencies and cancellation; every other outcome is
// reported through the returned record.
func (p *Pipeline) Generate(ctx context.Context, description string) (domain.InteractionRecord, error) {
	if p.Composer == nil || p.Backend == nil || p.Validator == nil || p.History == nil || p.Logger == nil {
		return domain.InteractionRecord{}, domain.ErrMissingDependency.WithMessage("generation.Pipeline")
	}
	if err := ctx.Err(); err != nil {
		return domain.InteractionRecord{}, err
	}

	osCtx := p.collectContext(ctx)

	p.enter(StageComposing)
	instruction, err := p.Composer.Compose(description, osCtx)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDescription) {
			return p.finish(ctx, p.failure(description, domain.FailureEmptyDescription, "", osCtx), StageFailed), nil
		}
		return domain.InteractionRecord{}, fmt.Errorf("compose prompt: %w", err)
	}

	p.enter(StageInvoking)
	p.Logger.Debug("invoking backend", map[string]interface{}{"backend": p.Backend.Name()})
	raw, err := p.Backend.Invoke(ctx, ports.BackendRequest{
		Instruction: instruction,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.Logger.Debug("generation cancelled", map[string]interface{}{"error": ctxErr.Error()})
			return domain.InteractionRecord{}, ctxErr
		}
		p.Logger.Debug("backend failed", map[string]interface{}{"error": err.Error()})
		return p.finish(ctx, p.failure(description, domain.FailureBackendExhausted, err.Error(), osCtx), StageFailed), nil
	}

	p.enter(StageExtracting)
	command, ok := extract.Extract(raw)
	if !ok {
		return p.finish(ctx, p.failure(description, domain.FailureNoCommandExtracted, truncate(raw), osCtx), StageFailed), nil
	}
	p.Logger.Debug("extracted candidate", map[string]interface{}{"command": command})

	p.enter(StageValidating)
	verdict := p.Validator.Validate(command)
	if !verdict.Accepted {
		detail := command
		if verdict.Detail != "" {
			detail = fmt.Sprintf("%s [%s]", command, verdict.Detail)
		}
		rec := p.failure(description, domain.RejectedFailure(verdict.Reason), detail, osCtx)
		return p.finish(ctx, rec, StageRejected), nil
	}

	rec := domain.NewSuccessRecord(p.newID(), description, command, p.now())
	rec.Backend = p.Backend.Name()
	rec.System = osCtx.String()
	return p.finish(ctx, rec, StageAccepted), nil
}

func (p *Pipeline) collectContext(ctx context.Context) domain.OSContext {
	if p.Context == nil {
		return domain.OSContext{}
	}
	osCtx, err := p.Context.Collect(ctx)
	if err != nil {
		p.Logger.Warn("context collection failed", map[string]interface{}{"error": err.Error()})
	}
	return osCtx
}

func (p *Pipeline) failure(description, kind, detail string, osCtx domain.OSContext) domain.InteractionRecord {
	rec := domain.NewFailureRecord(p.newID(), description, kind, p.now())
	rec.Detail = detail
	rec.Backend = p.Backend.Name()
	rec.System = osCtx.String()
	return rec
}

// finish appends rec to history. A persistence failure degrades to a warning.
func (p *Pipeline) finish(ctx context.Context, rec domain.InteractionRecord, stage Stage) domain.InteractionRecord {
	p.enter(stage)
	if err := p.History.Append(ctx, rec); err != nil {
		p.Logger.Warn("history not persisted", map[string]interface{}{
			"path":  p.History.Path(),
			"error": err.Error(),
		})
	}
	return rec.Clone()
}

func (p *Pipeline) enter(stage Stage) {
	p.Logger.Debug("pipeline stage", map[string]interface{}{"stage": string(stage)})
	if p.OnStage != nil {
		p.OnStage(stage)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now().UTC()
}

func (p *Pipeline) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}
