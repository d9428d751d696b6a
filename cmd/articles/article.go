package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/docstate/pkg/logger"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
	"github.com/dmitrymomot/docstate/pkg/validator"
)

// Article is the document driven by the articles machine.
type Article struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Body        string     `json:"body" bson:"body"`
	Author      string     `json:"author" bson:"author"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`

	statemachine.Fields `bson:",inline"`
}

func (a *Article) DocumentID() string { return a.ID }

func articleBindings(log *slog.Logger, store statemachine.Saver[*Article]) statemachine.Bindings[*Article] {
	return statemachine.Bindings[*Article]{
		Guards: map[string]statemachine.Guard[*Article]{
			"publishable": statemachine.GuardFields(map[string]statemachine.FieldCheck[*Article]{
				"title": func(_ context.Context, a *Article) string {
					return validator.Reason(validator.Required("title", a.Title))
				},
				"body": func(_ context.Context, a *Article) string {
					return validator.Reason(validator.MinLen("body", a.Body, 20))
				},
				"author": func(_ context.Context, a *Article) string {
					return validator.Reason(validator.Required("author", a.Author))
				},
			}),
		},
		Hooks: map[string]statemachine.Hook[*Article]{
			"stampPublished": func(ctx context.Context, a *Article) {
				now := time.Now().UTC()
				a.PublishedAt = &now
				if err := store.Save(ctx, a); err != nil {
					log.ErrorContext(ctx, "failed to save publish time", logger.DocumentID(a.ID), logger.Error(err))
				}
			},
			"announce": func(ctx context.Context, a *Article) {
				log.InfoContext(ctx, "article published", logger.DocumentID(a.ID), slog.String("title", a.Title))
			},
			"alertModerators": func(ctx context.Context, a *Article) {
				log.WarnContext(ctx, "article flagged for review", logger.DocumentID(a.ID))
			},
		},
	}
}
