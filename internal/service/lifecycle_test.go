package service

import (
	"context"
	"testing"
	"time"

	"github.com/nnptud/lms-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassroomLifecycle walks one class from creation to grading.
func TestClassroomLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	teacherUser := registerUser(t, f, "Tess Teacher", "tess@example.com", model.RoleTeacher)
	studentUser := registerUser(t, f, "Sam Student", "sam@example.com", model.RoleStudent)

	teacherToken, _, err := f.auth.Login(ctx, "tess@example.com", "secret123")
	require.NoError(t, err)
	studentToken, _, err := f.auth.Login(ctx, "sam@example.com", "secret123")
	require.NoError(t, err)

	teacher, err := f.auth.Authenticate(teacherToken)
	require.NoError(t, err)
	require.Equal(t, teacherUser.ID, teacher.ID)
	student, err := f.auth.Authenticate(studentToken)
	require.NoError(t, err)
	require.Equal(t, studentUser.ID, student.ID)

	// Teacher opens a class.
	class, err := f.class.Create(ctx, teacher, model.CreateClassRequest{Name: "Literature"})
	require.NoError(t, err)
	require.Len(t, class.Code, 6)

	_, err = f.class.Get(ctx, student, class.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// Student joins with the code as typed.
	_, err = f.class.Join(ctx, student, class.Code)
	require.NoError(t, err)

	detail, err := f.class.Get(ctx, student, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.StudentCount)

	// Teacher posts an assignment due in one hour, late work refused.
	start := f.clock.Now()
	assignment, err := f.assignment.Create(ctx, teacher, model.CreateAssignmentRequest{
		ClassID:   class.ID,
		Title:     "Essay on Hamlet",
		DueDate:   timePtr(start.Add(time.Hour)),
		AllowLate: false,
	})
	require.NoError(t, err)

	// On time.
	f.clock.Set(start.Add(30 * time.Minute))
	sub, err := submitText(t, f, student, assignment.ID, "To be or not to be")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)

	// Too late: rejected and the stored submission is untouched.
	f.clock.Set(start.Add(90 * time.Minute))
	_, err = submitText(t, f, student, assignment.ID, "rewritten")
	require.ErrorIs(t, err, ErrDeadlinePassed)

	stored := f.db.submissions[sub.ID]
	assert.Equal(t, "To be or not to be", *stored.Content)
	assert.Equal(t, model.SubmissionStatusSubmitted, stored.Status)
	assert.Equal(t, start.Add(30*time.Minute), stored.SubmittedAt)

	// Teacher grades within bounds, then overshoots.
	g, err := f.grade.Grade(ctx, teacher, sub.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, g.Score)

	_, err = f.grade.Grade(ctx, teacher, sub.ID, 11)
	require.ErrorIs(t, err, ErrScoreOutOfRange)
	assert.Equal(t, 7.0, f.db.grades[sub.ID].Score)

	// Student sees their own graded submission.
	mine, err := f.submission.Get(ctx, student, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, mine.Grade)
	assert.Equal(t, 7.0, mine.Grade.Score)

	list, err := f.assignment.ListForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, assignment.ID, list[0].Assignment.ID)
}
