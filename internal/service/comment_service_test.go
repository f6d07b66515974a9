package service

import (
	"context"
	"testing"

	"critique/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_ResolveComment(t *testing.T) {
	t.Parallel()

	svc := newContentFixture().commentService()
	ctx := context.Background()

	comment, err := svc.ResolveComment(ctx, 1, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, "first", comment.Text)

	tests := []struct {
		name                        string
		titleID, reviewID, commentID uint
	}{
		{name: "review of another title", titleID: 1, reviewID: 200, commentID: 1000},
		{name: "title mismatch for existing chain", titleID: 2, reviewID: 100, commentID: 1000},
		{name: "comment of another review", titleID: 2, reviewID: 200, commentID: 1000},
		{name: "missing comment", titleID: 1, reviewID: 100, commentID: 5},
		{name: "missing title", titleID: 7, reviewID: 100, commentID: 1000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolveComment(ctx, tc.titleID, tc.reviewID, tc.commentID)
			assertCode(t, err, models.CodeNotFound)
		})
	}
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()

	f := newContentFixture()
	var created *models.Comment
	f.comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 1001
		created = c
		return nil
	}
	f.comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return created, nil
	}
	svc := f.commentService()
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, otherUser, 1, 100, CommentInput{Text: "agreed"})
	require.NoError(t, err)
	assert.Equal(t, uint(1001), comment.ID)
	assert.Equal(t, uint(100), comment.ReviewID)
	assert.Equal(t, otherUser.UserID, comment.AuthorID)

	_, err = svc.CreateComment(ctx, anonymous, 1, 100, CommentInput{Text: "agreed"})
	assertCode(t, err, models.CodeUnauthenticated)

	// a comment cannot be planted on a review through another title's path
	_, err = svc.CreateComment(ctx, otherUser, 1, 200, CommentInput{Text: "sneaky"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.CreateComment(ctx, otherUser, 1, 100, CommentInput{})
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "text")
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := newContentFixture()
	var updated string
	var deleted uint
	f.comments.updateFn = func(_ context.Context, c *models.Comment) error {
		updated = c.Text
		return nil
	}
	f.comments.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := f.commentService()
	ctx := context.Background()

	_, err := svc.UpdateComment(ctx, otherUser, 1, 100, 1000, CommentInput{Text: "hijack"})
	assertCode(t, err, models.CodeForbidden)
	assert.Empty(t, updated)

	_, err = svc.UpdateComment(ctx, plainUser, 1, 100, 1000, CommentInput{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated)

	assertCode(t, svc.DeleteComment(ctx, otherUser, 1, 100, 1000), models.CodeForbidden)
	require.NoError(t, svc.DeleteComment(ctx, admin, 1, 100, 1000))
	assert.Equal(t, uint(1000), deleted)
}
