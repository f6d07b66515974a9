package service

import (
	"context"
	"testing"

	"critique/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userStore() (*userRepoStub, map[uint]models.User) {
	store := map[uint]models.User{
		plainUser.UserID: {ID: plainUser.UserID, Username: "alice", Email: "alice@example.com", Role: models.RoleUser, SecurityStamp: "s1"},
		admin.UserID:     {ID: admin.UserID, Username: "root", Email: "root@example.com", Role: models.RoleAdmin},
	}
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			u, ok := store[id]
			if !ok {
				return nil, models.NewNotFoundError("User", id)
			}
			return &u, nil
		},
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			for _, u := range store {
				if u.Username == name {
					return &u, nil
				}
			}
			return nil, models.NewNotFoundError("User", name)
		},
		updateFn: func(_ context.Context, u *models.User) error {
			store[u.ID] = *u
			return nil
		},
	}
	return repo, store
}

func TestUserService_UpdateMeStripsRole(t *testing.T) {
	t.Parallel()

	repo, store := userStore()
	svc := NewUserService(repo)
	role := models.RoleAdmin
	bio := "hello"

	user, err := svc.UpdateMe(context.Background(), plainUser, UpdateUserInput{Role: &role, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.RoleUser, store[plainUser.UserID].Role)
	assert.Equal(t, "hello", store[plainUser.UserID].Bio)
}

func TestUserService_SelfEndpointRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{})
	_, err := svc.GetMe(context.Background(), anonymous)
	assertCode(t, err, models.CodeUnauthenticated)
	_, err = svc.UpdateMe(context.Background(), anonymous, UpdateUserInput{})
	assertCode(t, err, models.CodeUnauthenticated)
}

func TestUserService_EmailChangeRotatesStamp(t *testing.T) {
	t.Parallel()

	repo, store := userStore()
	svc := NewUserService(repo)

	same := "ALICE@example.com"
	_, err := svc.UpdateMe(context.Background(), plainUser, UpdateUserInput{Email: &same})
	require.NoError(t, err)
	assert.Equal(t, "s1", store[plainUser.UserID].SecurityStamp)

	changed := "alice@new.example.com"
	_, err = svc.UpdateMe(context.Background(), plainUser, UpdateUserInput{Email: &changed})
	require.NoError(t, err)
	assert.NotEqual(t, "s1", store[plainUser.UserID].SecurityStamp)
	assert.Equal(t, changed, store[plainUser.UserID].Email)
}

func TestUserService_AdminSurface(t *testing.T) {
	t.Parallel()

	repo, store := userStore()
	var created *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 99
		created = u
		return nil
	}
	var deleted uint
	repo.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := NewUserService(repo)
	ctx := context.Background()

	for _, actor := range []struct {
		name string
		code string
		err  func() error
	}{
		{name: "anonymous list", code: models.CodeUnauthenticated, err: func() error {
			_, _, err := svc.ListUsers(ctx, anonymous, "", 10, 0)
			return err
		}},
		{name: "user list", code: models.CodeForbidden, err: func() error {
			_, _, err := svc.ListUsers(ctx, plainUser, "", 10, 0)
			return err
		}},
		{name: "moderator get", code: models.CodeForbidden, err: func() error {
			_, err := svc.GetUser(ctx, moderator, "alice")
			return err
		}},
		{name: "user delete", code: models.CodeForbidden, err: func() error {
			return svc.DeleteUser(ctx, plainUser, "alice")
		}},
	} {
		t.Run(actor.name, func(t *testing.T) {
			assertCode(t, actor.err(), actor.code)
		})
	}

	user, err := svc.CreateUser(ctx, admin, CreateUserInput{Username: "mod", Email: "Mod@Example.com", Role: models.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, uint(99), user.ID)
	assert.Equal(t, "mod@example.com", created.Email)
	assert.Equal(t, models.RoleModerator, created.Role)
	assert.NotEmpty(t, created.SecurityStamp)

	user, err = svc.CreateUser(ctx, superuser, CreateUserInput{Username: "plain", Email: "plain@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = svc.CreateUser(ctx, admin, CreateUserInput{Username: "ME", Email: "me@example.com"})
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "username")

	bad := models.Role("owner")
	_, err = svc.UpdateUser(ctx, admin, "alice", UpdateUserInput{Role: &bad})
	appErr = assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "role")

	promoted := models.RoleModerator
	_, err = svc.UpdateUser(ctx, admin, "alice", UpdateUserInput{Role: &promoted})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, store[plainUser.UserID].Role)

	_, err = svc.UpdateUser(ctx, admin, "ghost", UpdateUserInput{})
	assertCode(t, err, models.CodeNotFound)

	require.NoError(t, svc.DeleteUser(ctx, admin, "alice"))
	assert.Equal(t, plainUser.UserID, deleted)
}
