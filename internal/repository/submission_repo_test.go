package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadintake/internal/database"
	"leadintake/internal/domain"
)

func setupSubmissionRepo(t *testing.T) *SubmissionRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:submissions_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewSubmissionRepository(db)
}

func submission(actor string, status domain.SubmissionStatus, mode domain.SubmissionMode, fp string) *domain.Submission {
	return &domain.Submission{
		SessionID:   uuid.New().String(),
		ActorID:     actor,
		ActorRole:   "super_admin",
		Mode:        mode,
		LeadType:    "bank",
		BankID:      "bank-1",
		Fingerprint: fp,
		Status:      status,
	}
}

func TestSubmissionRepository_RecordAndFind(t *testing.T) {
	repo := setupSubmissionRepo(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	s := submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-1")
	s.LeadID = "lead-1"
	require.NoError(t, repo.Record(ctx, s))
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	found, err := repo.FindSucceeded(ctx, "fp-1", since)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "lead-1", found.LeadID)
	assert.Equal(t, domain.SubmissionCreate, found.Mode)

	missing, err := repo.FindSucceeded(ctx, "fp-unknown", since)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubmissionRepository_FindSucceededWindow(t *testing.T) {
	repo := setupSubmissionRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-1")
	old.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, repo.Record(ctx, old))

	found, err := repo.FindSucceeded(ctx, "fp-1", now.Add(-10*time.Second))
	require.NoError(t, err)
	assert.Nil(t, found)

	// identical leads from separate sessions are both journaled
	require.NoError(t, repo.Record(ctx, submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-1")))
	found, err = repo.FindSucceeded(ctx, "fp-1", now.Add(-10*time.Second))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.NotEqual(t, old.ID, found.ID)
}

func TestSubmissionRepository_OneCreatePerSession(t *testing.T) {
	repo := setupSubmissionRepo(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	first := submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-1")
	require.NoError(t, repo.Record(ctx, first))

	again := submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-other")
	again.SessionID = first.SessionID
	assert.ErrorIs(t, repo.Record(ctx, again), domain.ErrDuplicateSubmission)

	// failures and updates never claim the session
	failed := submission("u1", domain.SubmissionFailed, domain.SubmissionCreate, "fp-2")
	require.NoError(t, repo.Record(ctx, failed))
	retry := submission("u1", domain.SubmissionFailed, domain.SubmissionCreate, "fp-2")
	retry.SessionID = failed.SessionID
	require.NoError(t, repo.Record(ctx, retry))

	update := submission("u1", domain.SubmissionSucceeded, domain.SubmissionUpdate, "fp-3")
	require.NoError(t, repo.Record(ctx, update))
	updateAgain := submission("u1", domain.SubmissionSucceeded, domain.SubmissionUpdate, "fp-3")
	updateAgain.SessionID = update.SessionID
	require.NoError(t, repo.Record(ctx, updateAgain))

	found, err := repo.FindSucceeded(ctx, "fp-2", since)
	require.NoError(t, err)
	assert.Nil(t, found)
	found, err = repo.FindSucceeded(ctx, "fp-3", since)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSubmissionRepository_ListAndPrune(t *testing.T) {
	repo := setupSubmissionRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := submission("u1", domain.SubmissionFailed, domain.SubmissionCreate, "fp-old")
	old.CreatedAt = now.Add(-48 * time.Hour)
	old.Error = "backend down"
	require.NoError(t, repo.Record(ctx, old))
	require.NoError(t, repo.Record(ctx, submission("u1", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-a")))
	require.NoError(t, repo.Record(ctx, submission("u2", domain.SubmissionSucceeded, domain.SubmissionCreate, "fp-b")))

	all, total, err := repo.List(ctx, domain.SubmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, "backend down", all[2].Error, "oldest last")

	mine, total, err := repo.List(ctx, domain.SubmissionFilter{ActorID: "u1", Status: domain.SubmissionSucceeded})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "fp-a", mine[0].Fingerprint)

	page, total, err := repo.List(ctx, domain.SubmissionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	n, err := repo.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, total, err = repo.List(ctx, domain.SubmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
