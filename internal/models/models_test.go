package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoleHelpers(t *testing.T) {
	tests := []struct {
		name      string
		user      *User
		admin     bool
		moderator bool
	}{
		{"plain user", &User{Role: RoleUser}, false, false},
		{"moderator", &User{Role: RoleModerator}, false, true},
		{"admin role", &User{Role: RoleAdmin}, true, false},
		{"superuser with user role", &User{Role: RoleUser, IsSuperuser: true}, true, false},
		{"nil user", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, tt.user.IsAdmin())
			assert.Equal(t, tt.moderator, tt.user.IsModerator())
		})
	}
}

func TestIsReservedUsername(t *testing.T) {
	for _, name := range []string{"me", "Me", "ME", " mE "} {
		assert.True(t, IsReservedUsername(name), name)
	}
	for _, name := range []string{"meme", "m", "admin", ""} {
		assert.False(t, IsReservedUsername(name), name)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("root").Valid())
}

func TestReviewJSONRendersAuthorUsername(t *testing.T) {
	r := Review{ID: 7, Text: "great", Score: 9, Author: User{Username: "alice"}, Title: Title{Name: "Dune"}}
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "alice", out["author"])
	assert.Equal(t, float64(9), out["score"])
	assert.NotContains(t, out, "title")
	assert.NotContains(t, out, "AuthorID")
}

func TestCommentJSONRendersAuthorUsername(t *testing.T) {
	c := Comment{ID: 3, Text: "agreed", Author: User{Username: "bob"}}
	raw, err := json.Marshal([]Comment{c})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"author":"bob"`)
	assert.Contains(t, string(raw), `"text":"agreed"`)
}

func TestTitleJSONNullRating(t *testing.T) {
	raw, err := json.Marshal(Title{ID: 1, Name: "Dune", Year: 1965, Genres: []Genre{}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rating":null`)
	assert.Contains(t, string(raw), `"category":null`)
	assert.Contains(t, string(raw), `"genre":[]`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewUnauthenticatedError("who"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewNotFoundError("Title", 1), http.StatusNotFound},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewNotFoundError("Review", 2)), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), tt.err.Error())
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Title with ID 7 not found", NewNotFoundError("Title", uint(7)).Message)
	assert.Equal(t, `User "nobody" not found`, NewNotFoundError("User", "nobody").Message)
	assert.Equal(t, `Genre "sci-fi" not found`, NewNotFoundError("Genre", "sci-fi").Message)
}

func TestFieldError(t *testing.T) {
	err := NewFieldError("username", "taken").WithField("email", "taken too")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, []string{"taken"}, err.Fields["username"])
	assert.Equal(t, []string{"taken too"}, err.Fields["email"])
	assert.True(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(err, CodeNotFound))
}
