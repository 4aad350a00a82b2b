package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/events"
	"github.com/gs-sport/storefront/internal/repository"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

// UserQuery holds admin listing parameters.
type UserQuery struct {
	Search string
	Role   string
	Page   Page
}

// UserPage is one page of an admin user listing.
type UserPage struct {
	Users      []domain.User
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// AdminService implements user management for administrators.
type AdminService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AdminDependencies bundles requirements for the admin service.
type AdminDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{users: deps.UserRepo, dispatcher: deps.Dispatcher, logger: logger}
}

// ListUsers returns a filtered, paginated user list.
func (s *AdminService) ListUsers(ctx context.Context, actor domain.Identity, q UserQuery) (*UserPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	filter := repository.UserFilter{Search: strings.TrimSpace(q.Search)}
	if q.Role != "" {
		role, ok := domain.ParseRole(strings.ToUpper(q.Role))
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": q.Role})
		}
		filter.Role = &role
	}
	page := q.Page.normalize()
	filter.Limit = page.Size
	filter.Offset = page.offset()

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Size,
		TotalPages: TotalPages(total, page.Size),
	}, nil
}

// UpdateUserRole changes another account's role. Admins cannot change their own role.
func (s *AdminService) UpdateUserRole(ctx context.Context, actor domain.Identity, targetID, rawRole string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	targetID, ok := canonicalID(targetID)
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if targetID == actor.SubjectID {
		return nil, apperrors.NewValidationError("you cannot change your own role", nil)
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": rawRole})
	}

	before, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, notFoundOrInternal("user", err)
	}
	updated, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, notFoundOrInternal("user", err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserRoleChanged,
		ResourceID: updated.ID,
		Actor:      events.ActorOf(actor),
		Payload:    events.UserRoleChangedPayload{OldRole: before.Role, NewRole: updated.Role},
	})
	return updated, nil
}

// DeleteUser removes another account. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Identity, targetID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	targetID, ok := canonicalID(targetID)
	if !ok {
		return apperrors.NewNotFound("user", nil)
	}
	if targetID == actor.SubjectID {
		return apperrors.NewValidationError("you cannot delete your own account", nil)
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return notFoundOrInternal("user", err)
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return notFoundOrInternal("user", err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserDeleted,
		ResourceID: targetID,
		Actor:      events.ActorOf(actor),
		Payload:    events.UserDeletedPayload{Email: target.Email},
	})
	return nil
}

func (s *AdminService) publish(ctx context.Context, e events.Event) {
	publish(ctx, s.dispatcher, s.logger, e)
}
