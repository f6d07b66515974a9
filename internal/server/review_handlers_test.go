package server

import (
	"fmt"
	"net/http"
	"testing"

	"critique/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingIsTruncatedMean(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	bob := e.login("bob", models.RoleUser)
	id := e.seedTitle(admin)
	reviews := fmt.Sprintf("/api/v1/titles/%d/reviews", id)

	status, body := e.request(http.MethodPost, reviews, alice, fiber.Map{"text": "Great", "score": 8})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "alice", body["author"])
	assert.NotEmpty(t, body["pub_date"])

	status, _ = e.request(http.MethodPost, reviews, bob, fiber.Map{"text": "Superb", "score": 9})
	require.Equal(t, fiber.StatusCreated, status)

	status, body = e.request(http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", id), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(8), body["rating"])

	status, body = e.request(http.MethodGet, "/api/v1/titles", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, float64(8), results[0].(map[string]interface{})["rating"])
}

func TestCreateReviewRules(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	id := e.seedTitle(admin)
	reviews := fmt.Sprintf("/api/v1/titles/%d/reviews", id)

	status, _ := e.request(http.MethodPost, reviews, "", fiber.Map{"text": "x", "score": 5})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = e.request(http.MethodPost, "/api/v1/titles/999/reviews", alice, fiber.Map{"text": "x", "score": 5})
	assert.Equal(t, fiber.StatusNotFound, status)

	for _, score := range []int{0, 11} {
		status, body := e.request(http.MethodPost, reviews, alice, fiber.Map{"text": "x", "score": score})
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Contains(t, fields(body), "score")
	}

	status, _ = e.request(http.MethodPost, reviews, alice, fiber.Map{"text": "first", "score": 5})
	require.Equal(t, fiber.StatusCreated, status)
	status, body := e.request(http.MethodPost, reviews, alice, fiber.Map{"text": "second", "score": 6})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, fields(body), "non_field_errors")

	// admins are bound by the same rule
	status, _ = e.request(http.MethodPost, reviews, admin, fiber.Map{"text": "mine", "score": 7})
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = e.request(http.MethodPost, reviews, admin, fiber.Map{"text": "again", "score": 7})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = e.request(http.MethodGet, reviews, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])
}

func TestReviewModeration(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	bob := e.login("bob", models.RoleUser)
	moderator := e.login("mod", models.RoleModerator)
	id := e.seedTitle(admin)

	status, body := e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", id), alice, fiber.Map{"text": "Fine", "score": 6})
	require.Equal(t, fiber.StatusCreated, status)
	path := fmt.Sprintf("/api/v1/titles/%d/reviews/%d", id, int(body["id"].(float64)))

	status, _ = e.request(http.MethodPatch, path, "", fiber.Map{"score": 1})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = e.request(http.MethodPatch, path, bob, fiber.Map{"score": 1})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, body = e.request(http.MethodGet, path, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(6), body["score"])

	status, body = e.request(http.MethodPatch, path, alice, fiber.Map{"text": "Better on rewatch"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Better on rewatch", body["text"])
	assert.Equal(t, float64(6), body["score"])

	status, body = e.request(http.MethodPatch, path, moderator, fiber.Map{"score": 7})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(7), body["score"])
	assert.Equal(t, "alice", body["author"])

	status, _ = e.request(http.MethodPatch, path, alice, fiber.Map{"score": 12})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.request(http.MethodDelete, path, bob, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = e.request(http.MethodDelete, path, admin, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = e.request(http.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestNestedResolution(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	first := e.seedTitle(admin)

	status, body := e.request(http.MethodPost, "/api/v1/titles", admin, fiber.Map{"name": "Other", "year": 2000})
	require.Equal(t, fiber.StatusCreated, status)
	second := int(body["id"].(float64))

	status, body = e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", first), alice, fiber.Map{"text": "ok", "score": 5})
	require.Equal(t, fiber.StatusCreated, status)
	review := int(body["id"].(float64))

	status, body = e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", first, review), alice, fiber.Map{"text": "p.s."})
	require.Equal(t, fiber.StatusCreated, status)
	comment := int(body["id"].(float64))

	tests := []struct {
		name string
		path string
	}{
		{"review under the wrong title", fmt.Sprintf("/api/v1/titles/%d/reviews/%d", second, review)},
		{"comments of a review under the wrong title", fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", second, review)},
		{"comment under the wrong title", fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/%d", second, review, comment)},
		{"missing review", fmt.Sprintf("/api/v1/titles/%d/reviews/999", first)},
		{"missing comment", fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments/999", first, review)},
		{"missing title", "/api/v1/titles/999/reviews"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := e.request(http.MethodGet, tc.path, "", nil)
			assert.Equal(t, fiber.StatusNotFound, status)
		})
	}

	t.Run("comment posted through the wrong title", func(t *testing.T) {
		status, _ := e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", second, review), alice, fiber.Map{"text": "sneaky"})
		assert.Equal(t, fiber.StatusNotFound, status)

		var count int64
		require.NoError(t, e.db.Model(&models.Comment{}).Where("review_id = ?", review).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("review edited through the wrong title", func(t *testing.T) {
		status, _ := e.request(http.MethodPatch, fmt.Sprintf("/api/v1/titles/%d/reviews/%d", second, review), alice, fiber.Map{"score": 1})
		assert.Equal(t, fiber.StatusNotFound, status)

		var stored models.Review
		require.NoError(t, e.db.First(&stored, review).Error)
		assert.Equal(t, 5, stored.Score)
	})

	// authentication is checked before the object is located
	status, _ = e.request(http.MethodPatch, fmt.Sprintf("/api/v1/titles/%d/reviews/999", first), "", fiber.Map{"text": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = e.request(http.MethodPatch, fmt.Sprintf("/api/v1/titles/%d/reviews/999", first), alice, fiber.Map{"text": "x"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCommentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	bob := e.login("bob", models.RoleUser)
	moderator := e.login("mod", models.RoleModerator)
	id := e.seedTitle(admin)

	status, body := e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", id), alice, fiber.Map{"text": "ok", "score": 5})
	require.Equal(t, fiber.StatusCreated, status)
	comments := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", id, int(body["id"].(float64)))

	status, _ = e.request(http.MethodPost, comments, "", fiber.Map{"text": "hi"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body = e.request(http.MethodPost, comments, bob, fiber.Map{"text": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, fields(body), "text")

	// any number of comments per user
	for i := 0; i < 2; i++ {
		status, body = e.request(http.MethodPost, comments, bob, fiber.Map{"text": fmt.Sprintf("reply %d", i)})
		require.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, "bob", body["author"])
	}
	path := fmt.Sprintf("%s/%d", comments, int(body["id"].(float64)))

	status, body = e.request(http.MethodGet, comments, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, _ = e.request(http.MethodPatch, path, alice, fiber.Map{"text": "edited"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, body = e.request(http.MethodPatch, path, moderator, fiber.Map{"text": "edited"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "edited", body["text"])
	assert.Equal(t, "bob", body["author"])

	status, _ = e.request(http.MethodDelete, path, bob, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = e.request(http.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTitleDeleteCascades(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login("boss", models.RoleAdmin)
	alice := e.login("alice", models.RoleUser)
	id := e.seedTitle(admin)

	status, body := e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", id), alice, fiber.Map{"text": "ok", "score": 5})
	require.Equal(t, fiber.StatusCreated, status)
	review := int(body["id"].(float64))
	status, _ = e.request(http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", id, review), alice, fiber.Map{"text": "c"})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = e.request(http.MethodDelete, fmt.Sprintf("/api/v1/titles/%d", id), admin, nil)
	require.Equal(t, fiber.StatusNoContent, status)

	var reviews, comments int64
	e.db.Model(&models.Review{}).Count(&reviews)
	e.db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}
