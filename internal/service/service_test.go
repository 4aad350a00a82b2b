package service

import (
	"context"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/config"
	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/events"
	"github.com/gs-sport/storefront/internal/repository/repofake"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, status, de.HTTPStatus, de.Message)
}

func seedUser(repo *repofake.FakeUserRepo, email string, role domain.Role) domain.User {
	u := domain.User{
		ID:        uuid.NewString(),
		Name:      email,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	repo.Put(u)
	return u
}

func newAuthService(t *testing.T, users *repofake.FakeUserRepo, admins ...string) *AuthService {
	t.Helper()
	return NewAuthService(
		config.AuthConfig{BcryptCost: bcrypt.MinCost, BootstrapAdminEmails: admins},
		AuthDependencies{UserRepo: users, Tokens: auth.NewTokenManager("test-secret")},
	)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	svc := newAuthService(t, users)

	session, err := svc.Register(ctx, "Ann", "Ann@X.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", session.User.Email)
	assert.Equal(t, domain.RoleUser, session.User.Role)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "password1", session.User.PasswordHash)

	_, err = svc.Register(ctx, "Ann again", "ann@x.com", "password2")
	requireStatus(t, err, http.StatusConflict)

	login, err := svc.Login(ctx, "ann@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "ann@x.com", "wrong-password")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(ctx, "nobody@x.com", "password1")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(t, repofake.NewFakeUserRepo())

	cases := []struct {
		name, user, email, password string
	}{
		{"missing name", "", "a@x.com", "password1"},
		{"markup only name", "<b></b>", "a@x.com", "password1"},
		{"bad email", "Ann", "not-an-email", "password1"},
		{"display name email", "Ann", "Ann <a@x.com>", "password1"},
		{"short password", "Ann", "a@x.com", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.user, tc.email, tc.password)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	svc := newAuthService(t, repofake.NewFakeUserRepo(), "owner@gs-sport.ge")

	session, err := svc.Register(context.Background(), "Owner", "Owner@gs-sport.ge", "password1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, session.User.Role)
}

func TestAuthService_MeForDeletedAccount(t *testing.T) {
	svc := newAuthService(t, repofake.NewFakeUserRepo())

	_, err := svc.Me(context.Background(), domain.Identity{SubjectID: uuid.NewString(), Role: domain.RoleUser})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAdminService_SelfProtection(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	actor := domain.IdentityOf(&admin)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	_, err := svc.UpdateUserRole(ctx, actor, admin.ID, "USER")
	requireStatus(t, err, http.StatusBadRequest)

	err = svc.DeleteUser(ctx, actor, admin.ID)
	requireStatus(t, err, http.StatusBadRequest)

	stored, err := users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestAdminService_SelfProtectionIgnoresIDSpelling(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	actor := domain.IdentityOf(&admin)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	spellings := []string{
		strings.ToUpper(admin.ID),
		"{" + admin.ID + "}",
		"urn:uuid:" + admin.ID,
	}
	for _, id := range spellings {
		t.Run(id, func(t *testing.T) {
			_, err := svc.UpdateUserRole(ctx, actor, id, "USER")
			requireStatus(t, err, http.StatusBadRequest)

			err = svc.DeleteUser(ctx, actor, id)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}

	stored, err := users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestAdminService_AcceptsUpperCaseTargetID(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	target := seedUser(users, "bob@x.com", domain.RoleUser)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	updated, err := svc.UpdateUserRole(ctx, domain.IdentityOf(&admin), strings.ToUpper(target.ID), "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, target.ID, updated.ID)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestAdminService_ManagesOtherUsers(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	target := seedUser(users, "bob@x.com", domain.RoleUser)
	actor := domain.IdentityOf(&admin)

	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			seen = append(seen, e.Type)
			return nil
		})
	}
	svc := NewAdminService(AdminDependencies{UserRepo: users, Dispatcher: dispatcher})

	_, err := svc.UpdateUserRole(ctx, actor, target.ID, "SUPERUSER")
	requireStatus(t, err, http.StatusBadRequest)

	updated, err := svc.UpdateUserRole(ctx, actor, target.ID, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	require.NoError(t, svc.DeleteUser(ctx, actor, target.ID))
	err = svc.DeleteUser(ctx, actor, target.ID)
	requireStatus(t, err, http.StatusNotFound)

	err = svc.DeleteUser(ctx, actor, "not-a-uuid")
	requireStatus(t, err, http.StatusNotFound)

	assert.Equal(t, []events.EventType{events.EventUserRoleChanged, events.EventUserDeleted}, seen)
}

func TestAdminService_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	user := seedUser(users, "u@x.com", domain.RoleUser)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	_, err := svc.ListUsers(ctx, domain.IdentityOf(&user), UserQuery{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.ListUsers(ctx, domain.Identity{}, UserQuery{})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAdminService_ListUsersPaginates(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	for i := 0; i < 4; i++ {
		seedUser(users, uuid.NewString()+"@x.com", domain.RoleUser)
	}
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	page, err := svc.ListUsers(ctx, domain.IdentityOf(&admin), UserQuery{Page: Page{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Users, 2)

	page, err = svc.ListUsers(ctx, domain.IdentityOf(&admin), UserQuery{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestPage_NormalizeBoundsOffset(t *testing.T) {
	p := Page{Number: math.MaxInt, Size: 100}.normalize()
	assert.Equal(t, maxPageNumber, p.Number)
	assert.Equal(t, (maxPageNumber-1)*100, p.offset())
	assert.Positive(t, p.offset())

	p = Page{Number: -3, Size: 1000}.normalize()
	assert.Equal(t, Page{Number: 1, Size: maxPageSize}, p)
	assert.Equal(t, 0, p.offset())
}

func TestAdminService_HugePageIsEmptyNotFirst(t *testing.T) {
	ctx := context.Background()
	users := repofake.NewFakeUserRepo()
	admin := seedUser(users, "admin@x.com", domain.RoleAdmin)
	svc := NewAdminService(AdminDependencies{UserRepo: users})

	page, err := svc.ListUsers(ctx, domain.IdentityOf(&admin), UserQuery{Page: Page{Number: math.MaxInt}})
	require.NoError(t, err)
	assert.Equal(t, maxPageNumber, page.Page)
	assert.Equal(t, 1, page.Total)
	assert.Empty(t, page.Users)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
}
