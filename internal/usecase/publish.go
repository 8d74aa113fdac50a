package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

const frMissingWarning = "French translation is missing or incomplete for a page that requires it"

// Publish publishes or unpublishes one translation of a page.
//
// Publishing English on a page that requires French, while the French
// translation has no title or body, is held back with a warning unless Force
// is set. A forced publish still reports the warning.
func (uc *PageUseCase) Publish(ctx context.Context, actor Actor, pageID string, in PublishInput) (*PublishOutput, error) {
	if in.TranslationID == "" {
		return nil, &DomainError{Code: CodeValidation, Message: "translation_id is required"}
	}
	if in.Action != ActionPublish && in.Action != ActionUnpublish {
		return nil, &DomainError{Code: CodeValidation, Message: "action must be publish or unpublish"}
	}

	page, err := uc.findPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	t, err := uc.findTranslation(ctx, pageID, in.TranslationID)
	if err != nil {
		return nil, err
	}

	out := &PublishOutput{Success: true, Action: in.Action}

	if in.Action == ActionPublish && t.Locale == entity.LocaleEN && page.FrRequired {
		if fr := page.Translation(entity.LocaleFR); !fr.HasContent() {
			out.Warning = frMissingWarning
			out.FrMissing = true
			out.CanProceed = true
			if !in.Force {
				uc.Logger.Info("publish held back for missing french translation", zap.String("page_id", pageID))
				return out, nil
			}
		}
	}

	before := translationState(t)
	published := in.Action == ActionPublish
	action := entity.AuditUnpublish
	var publishedAt *time.Time
	if published {
		action = entity.AuditPublish
		now := uc.now().UTC()
		publishedAt = &now
	}

	if err := uc.Repo.SetPublished(ctx, t.ID, published, publishedAt); err != nil {
		return nil, storageError("failed to change publication state", err)
	}
	t.IsPublished = published
	t.PublishedAt = publishedAt

	uc.Audit.Log(ctx, actor, action, entity.ItemPageTranslation, t.ID, before, translationState(t))
	out.Published = t.IsPublished
	return out, nil
}
