package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"blogmanity/internal/domain"
	"blogmanity/internal/repository"
)

// openTestDB opens a throwaway database with every table initialized.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewPostRepository(db).Init(ctx))
	require.NoError(t, NewFeedbackRepository(db).Init(ctx))
	require.NoError(t, NewPocketRepository(db).Init(ctx))

	return db
}

func seedUserInput(email string) *domain.User {
	return &domain.User{
		Firstname:    "Jane",
		Lastname:     "Doe",
		Email:        email,
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		Role:         domain.RoleUser,
		Active:       true,
	}
}

func seedUser(t *testing.T, repo repository.UserRepository, email string) *domain.User {
	t.Helper()
	user := seedUserInput(email)
	_, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func seedPost(t *testing.T, repo repository.PostRepository, userID int64, title string, validated bool) *domain.Post {
	t.Helper()
	post := &domain.Post{
		UserID:      userID,
		Title:       title,
		Tags:        []string{"go", "testing"},
		Description: "desc",
		Content:     "content",
		ReadTime:    1,
		Validated:   validated,
	}
	_, err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	return post
}

func seedFeedback(t *testing.T, repo repository.FeedbackRepository, userID, postID int64) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.Feedback{
		UserID:  userID,
		PostID:  postID,
		Type:    domain.FeedbackComment,
		Content: "nice",
	})
	require.NoError(t, err)
	return id
}
