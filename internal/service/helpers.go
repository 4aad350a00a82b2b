package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/events"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

func requireAdmin(actor domain.Identity) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleUser:
		return apperrors.NewForbidden("admin role required")
	default:
		return apperrors.NewUnauthorized("authentication required")
	}
}

// canonicalID parses any accepted uuid spelling (upper case, braces, urn)
// into the lower-case hyphenated form ids are stored and compared in.
func canonicalID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func notFoundOrInternal(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}

// publish emits an event. Subscriber failures never fail the request.
func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, e events.Event) {
	if d == nil {
		return
	}
	if err := d.Publish(ctx, e); err != nil {
		logger.Warn("event subscriber failed", zap.String("type", string(e.Type)), zap.Error(err))
	}
}
