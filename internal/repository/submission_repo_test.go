package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps the schema visible across the
	// connections GORM pools, while staying isolated per test.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Problem{},
		&models.Submission{},
	))

	return db
}

func seedSubmissionFixtures(t *testing.T, db *gorm.DB) (models.User, models.User, models.Assignment) {
	t.Helper()

	alice := models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleStudent, GfgUsername: "alice_gfg"}
	bob := models.User{Name: "Bob", Email: "bob@example.com", Role: models.RoleStudent, LeetcodeUsername: "bob_lc"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	class := models.Class{Name: "DSA Batch 2026"}
	require.NoError(t, db.Create(&class).Error)

	assignment := models.Assignment{
		ClassID: class.ID,
		Title:   "Week 1 Arrays",
		Problems: []models.Problem{
			{URL: "https://www.geeksforgeeks.org/problems/two-sum/1", Title: "Two Sum", Platform: models.PlatformGfg},
			{URL: "https://leetcode.com/problems/add-two-numbers/", Title: "Add Two Numbers", Platform: models.PlatformLeetcode},
		},
	}
	require.NoError(t, db.Create(&assignment).Error)

	return alice, bob, assignment
}

func TestSubmissionRepositoryMarkCompletedIsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	alice, _, assignment := seedSubmissionFixtures(t, db)

	submission := models.Submission{UserID: alice.ID, ProblemID: assignment.Problems[0].ID}
	require.NoError(t, repo.Create(context.Background(), &submission))

	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	updated, err := repo.MarkCompleted(context.Background(), submission.ID, first)
	require.NoError(t, err)
	require.True(t, updated)

	// A second completion attempt must not touch the row.
	updated, err = repo.MarkCompleted(context.Background(), submission.ID, first.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, updated)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.True(t, stored.Completed)
	require.NotNil(t, stored.SubmissionTime)
	require.Equal(t, first.Unix(), stored.SubmissionTime.Unix())
}

func TestSubmissionRepositoryListPendingPage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	alice, bob, assignment := seedSubmissionFixtures(t, db)

	rows := []models.Submission{
		{UserID: alice.ID, ProblemID: assignment.Problems[0].ID},
		{UserID: alice.ID, ProblemID: assignment.Problems[1].ID},
		{UserID: bob.ID, ProblemID: assignment.Problems[0].ID},
		{UserID: bob.ID, ProblemID: assignment.Problems[1].ID},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), rows))

	// Completed rows drop out of the pending scan.
	updated, err := repo.MarkCompleted(context.Background(), rows[0].ID, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, updated)

	page, err := repo.ListPendingPage(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, rows[1].ID, page[0].ID)
	require.Equal(t, rows[2].ID, page[1].ID)
	require.Equal(t, "Alice", page[0].User.Name, "expected user preloaded")
	require.Equal(t, "Add Two Numbers", page[0].Problem.Title, "expected problem preloaded")

	page, err = repo.ListPendingPage(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, rows[3].ID, page[0].ID)

	page, err = repo.ListPendingPage(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestSubmissionRepositoryListPendingFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	alice, bob, assignment := seedSubmissionFixtures(t, db)

	rows := []models.Submission{
		{UserID: alice.ID, ProblemID: assignment.Problems[0].ID},
		{UserID: alice.ID, ProblemID: assignment.Problems[1].ID},
		{UserID: bob.ID, ProblemID: assignment.Problems[0].ID},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), rows))

	pending, err := repo.ListPending(context.Background(), PendingSubmissionQuery{AssignmentID: &assignment.ID})
	require.NoError(t, err)
	require.Len(t, pending, 3)

	pending, err = repo.ListPending(context.Background(), PendingSubmissionQuery{AssignmentID: &assignment.ID, UserID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, pending, 2)

	gfg := models.PlatformGfg
	pending, err = repo.ListPending(context.Background(), PendingSubmissionQuery{Platform: &gfg})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, submission := range pending {
		require.Equal(t, models.PlatformGfg, submission.Problem.Platform)
	}
}

func TestSubmissionRepositoryCountCompletedByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	alice, bob, assignment := seedSubmissionFixtures(t, db)

	rows := []models.Submission{
		{UserID: alice.ID, ProblemID: assignment.Problems[0].ID},
		{UserID: alice.ID, ProblemID: assignment.Problems[1].ID},
		{UserID: bob.ID, ProblemID: assignment.Problems[0].ID},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), rows))

	now := time.Now().UTC()
	for _, id := range []uint{rows[0].ID, rows[1].ID, rows[2].ID} {
		updated, err := repo.MarkCompleted(context.Background(), id, now)
		require.NoError(t, err)
		require.True(t, updated)
	}

	counts, err := repo.CountCompletedByUser(context.Background(), assignment.ClassID)
	require.NoError(t, err)
	require.Equal(t, 2, counts[alice.ID])
	require.Equal(t, 1, counts[bob.ID])

	// Completed work in another class does not leak into the counts.
	counts, err = repo.CountCompletedByUser(context.Background(), assignment.ClassID+1)
	require.NoError(t, err)
	require.Empty(t, counts)
}
