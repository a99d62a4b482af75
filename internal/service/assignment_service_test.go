package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/repository"
)

func newAssignmentFixture(t *testing.T) (AssignmentService, *fakeAssignmentRepo, *fakeSubmissionRepo) {
	t.Helper()

	classes := &fakeClassRepo{
		classes: map[uint]models.Class{1: {ID: 1, Name: "DSA Batch 2026", TeacherID: 9}},
		users: map[uint]models.User{
			2: {ID: 2, Name: "Alice", Role: models.RoleStudent},
			3: {ID: 3, Name: "Bob", Role: models.RoleStudent},
			9: {ID: 9, Name: "Prof", Role: models.RoleTeacher},
		},
		enrollments: []models.Enrollment{
			{ClassID: 1, UserID: 2},
			{ClassID: 1, UserID: 3},
			{ClassID: 1, UserID: 9},
		},
	}
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	submissions := &fakeSubmissionRepo{}

	svc := NewAssignmentService(
		assignments,
		classes,
		submissions,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	return svc, assignments, submissions
}

func TestCreateAssignmentFansOutPendingSubmissions(t *testing.T) {
	svc, _, submissions := newAssignmentFixture(t)

	due := "2026-04-10T00:00:00Z"
	created, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: 1,
		Title:   "Week 1 Arrays",
		DueDate: &due,
		Problems: []dto.ProblemCreateRequest{
			{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
			{URL: "https://www.geeksforgeeks.org/problems/reverse-array/1", Title: "Reverse Array", Platform: models.PlatformGfg},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Problems, 2)
	require.NotNil(t, created.DueDate)

	// Two students and two problems make four pending rows; the teacher
	// enrollment gets none.
	pending, err := submissions.ListPending(context.Background(), repository.PendingSubmissionQuery{})
	require.NoError(t, err)
	require.Len(t, pending, 4)
	for _, submission := range pending {
		require.False(t, submission.Completed)
		require.NotEqual(t, uint(9), submission.UserID)
	}
}

func TestCreateAssignmentUnknownClass(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: 42,
		Title:   "Orphan Assignment",
		Problems: []dto.ProblemCreateRequest{
			{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
		},
	})
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestCreateAssignmentRejectsBadDate(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	bad := "next tuesday"
	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: 1,
		Title:   "Week 2 Strings",
		DueDate: &bad,
		Problems: []dto.ProblemCreateRequest{
			{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
		},
	})
	require.Error(t, err)
}

func TestAddProblemsFansOutOnlyNewRows(t *testing.T) {
	svc, _, submissions := newAssignmentFixture(t)

	created, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: 1,
		Title:   "Week 1 Arrays",
		Problems: []dto.ProblemCreateRequest{
			{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
		},
	})
	require.NoError(t, err)

	updated, err := svc.AddProblems(context.Background(), created.ID, []dto.ProblemCreateRequest{
		{URL: "https://www.hackerrank.com/challenges/simple-array-sum/problem", Title: "Simple Array Sum", Platform: models.PlatformHackerrank},
	})
	require.NoError(t, err)
	require.Len(t, updated.Problems, 2)

	pending, err := submissions.ListPending(context.Background(), repository.PendingSubmissionQuery{})
	require.NoError(t, err)
	require.Len(t, pending, 4, "two students times two problems")
}

func TestAddProblemsUnknownAssignment(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.AddProblems(context.Background(), 404, []dto.ProblemCreateRequest{
		{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
	})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDeleteAssignment(t *testing.T) {
	svc, assignments, _ := newAssignmentFixture(t)

	created, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: 1,
		Title:   "Week 1 Arrays",
		Problems: []dto.ProblemCreateRequest{
			{URL: "https://leetcode.com/problems/two-sum/", Title: "Two Sum", Platform: models.PlatformLeetcode},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Empty(t, assignments.assignments)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrAssignmentNotFound)
}
