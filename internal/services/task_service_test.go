package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/testutil"
	"github.com/yukikurage/team-task-api/internal/utils"
)

func taskTitles(tasks []models.Task) []string {
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	return titles
}

func TestTaskService_TeamScopedVisibility(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")

	team, err := env.teams.CreateTeam(CreateTeamInput{Name: "T", CreatorID: alice.ID})
	require.NoError(t, err)
	_, err = env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: bob.ID})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(CreateTaskInput{CreatorID: bob.ID, TeamID: &team.ID, Title: "X"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, task.CreatedByID)
	assert.Equal(t, "bob", task.CreatedBy.Username)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())

	for _, user := range []*models.User{alice, bob} {
		tasks, err := env.tasks.ListTasks(ListTasksInput{UserID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"X"}, taskTitles(tasks), "user %s", user.Username)
	}

	tasks, err := env.tasks.ListTasks(ListTasksInput{UserID: carol.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = env.tasks.ListTasks(ListTasksInput{UserID: carol.ID, TeamID: &team.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = env.tasks.GetTask(task.ID, carol.ID)
	require.ErrorIs(t, err, ErrNotTeamMember)

	_, err = env.tasks.ListComments(task.ID, carol.ID)
	require.ErrorIs(t, err, ErrNotTeamMember)

	_, err = env.tasks.GetTask(9999, alice.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_CreateTaskValidation(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	missing := uint64(9999)

	cases := []struct {
		name  string
		input CreateTaskInput
		field string
	}{
		{"missing team", CreateTaskInput{CreatorID: alice.ID, Title: "x"}, "team"},
		{"missing title", CreateTaskInput{CreatorID: alice.ID, TeamID: &team.ID}, "title"},
		{"bad status", CreateTaskInput{CreatorID: alice.ID, TeamID: &team.ID, Title: "x", Status: "blocked"}, "status"},
		{"bad priority", CreateTaskInput{CreatorID: alice.ID, TeamID: &team.ID, Title: "x", Priority: "critical"}, "priority"},
		{"unknown team", CreateTaskInput{CreatorID: alice.ID, TeamID: &missing, Title: "x"}, "team_id"},
		{"unknown assignee", CreateTaskInput{CreatorID: alice.ID, TeamID: &team.ID, Title: "x", AssignedToID: &missing}, "assigned_to_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tasks.CreateTask(tc.input)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}

	t.Run("non-member", func(t *testing.T) {
		_, err := env.tasks.CreateTask(CreateTaskInput{CreatorID: carol.ID, TeamID: &team.ID, Title: "x"})
		require.ErrorIs(t, err, ErrNotTeamMember)
	})

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	assert.Zero(t, count)
}

func TestTaskService_ListTasksFiltersAndOrdering(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	other := testutil.CreateTeam(t, env.db, "U", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleMember)

	create := func(teamID uint64, title, description, priority, status string, assignee *uint64) {
		_, err := env.tasks.CreateTask(CreateTaskInput{
			CreatorID:    alice.ID,
			TeamID:       &teamID,
			Title:        title,
			Description:  description,
			Priority:     priority,
			Status:       status,
			AssignedToID: assignee,
		})
		require.NoError(t, err)
	}
	create(team.ID, "Write docs", "user guide", "low", "todo", nil)
	create(team.ID, "Fix login", "urgent bug in LOGIN flow", "urgent", "in_progress", &bob.ID)
	create(team.ID, "Review PR", "", "high", "review", &bob.ID)
	create(other.ID, "Plan offsite", "", "medium", "done", nil)

	list := func(input ListTasksInput) []string {
		input.UserID = alice.ID
		tasks, err := env.tasks.ListTasks(input)
		require.NoError(t, err)
		return taskTitles(tasks)
	}

	assert.Equal(t, []string{"Plan offsite", "Review PR", "Fix login", "Write docs"}, list(ListTasksInput{}))
	assert.Equal(t, []string{"Fix login"}, list(ListTasksInput{Status: "in_progress"}))
	assert.Equal(t, []string{"Review PR"}, list(ListTasksInput{Priority: "high"}))
	assert.Equal(t, []string{"Plan offsite"}, list(ListTasksInput{TeamID: &other.ID}))
	assert.Equal(t, []string{"Review PR", "Fix login"}, list(ListTasksInput{AssignedToID: &bob.ID}))
	assert.Equal(t, []string{"Fix login"}, list(ListTasksInput{Search: "login"}))
	assert.Equal(t, []string{"Write docs"}, list(ListTasksInput{Search: "GUIDE"}))

	assert.Equal(t,
		[]string{"Fix login", "Review PR", "Plan offsite", "Write docs"},
		list(ListTasksInput{Ordering: []string{"-priority"}}))
	assert.Equal(t,
		[]string{"Write docs", "Plan offsite", "Review PR", "Fix login"},
		list(ListTasksInput{Ordering: []string{"priority", "bogus"}}))
	assert.Equal(t,
		[]string{"Review PR", "Plan offsite"},
		list(ListTasksInput{Ordering: []string{"-priority"}, Pagination: utils.PaginationParams{Limit: 2, Offset: 1}}))

	// Bob only belongs to the first team.
	tasks, err := env.tasks.ListTasks(ListTasksInput{UserID: bob.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	_, err = env.tasks.ListTasks(ListTasksInput{UserID: alice.ID, Status: "blocked"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "status", validationErr.Field)
}

func TestTaskService_ListTasksSearchIsLiteral(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	testutil.CreateTask(t, env.db, team, alice, "Write docs")
	testutil.CreateTask(t, env.db, team, alice, "Fix bug")

	for _, q := range []string{"%", "_", "F_x", "W%s"} {
		tasks, err := env.tasks.ListTasks(ListTasksInput{UserID: alice.ID, Search: q})
		require.NoError(t, err)
		assert.Empty(t, taskTitles(tasks), q)
	}

	tasks, err := env.tasks.ListTasks(ListTasksInput{UserID: alice.ID, Search: "FIX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fix bug"}, taskTitles(tasks))
}

func TestTaskService_UpdateTask(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleMember)
	foreign := testutil.CreateTeam(t, env.db, "F", carol)

	task, err := env.tasks.CreateTask(CreateTaskInput{CreatorID: alice.ID, TeamID: &team.ID, Title: "Draft"})
	require.NoError(t, err)
	createdAt := task.CreatedAt

	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	updated, err := env.tasks.UpdateTask(UpdateTaskInput{
		TaskID:        task.ID,
		UserID:        bob.ID,
		Title:         ptr("Final"),
		Status:        ptr("done"),
		DueDate:       &due,
		DueDateSet:    true,
		AssignedToID:  &bob.ID,
		AssignedToSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, models.TaskStatusDone, updated.Status)
	assert.Equal(t, alice.ID, updated.CreatedByID)
	assert.True(t, createdAt.Equal(updated.CreatedAt))
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "bob", updated.AssignedTo.Username)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))

	cleared, err := env.tasks.UpdateTask(UpdateTaskInput{TaskID: task.ID, UserID: alice.ID, AssignedToSet: true, DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedToID)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, "Final", cleared.Title)

	_, err = env.tasks.UpdateTask(UpdateTaskInput{TaskID: task.ID, UserID: carol.ID, Title: ptr("hijack")})
	require.ErrorIs(t, err, ErrNotTeamMember)

	_, err = env.tasks.UpdateTask(UpdateTaskInput{TaskID: task.ID, UserID: alice.ID, TeamID: &foreign.ID})
	require.ErrorIs(t, err, ErrNotTeamMember)

	_, err = env.tasks.UpdateTask(UpdateTaskInput{TaskID: task.ID, UserID: alice.ID, Title: ptr(" ")})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "title", validationErr.Field)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	task := testutil.CreateTask(t, env.db, team, alice, "Temp")
	_, err := env.tasks.AddComment(AddCommentInput{TaskID: task.ID, UserID: alice.ID, Content: "note"})
	require.NoError(t, err)

	require.ErrorIs(t, env.tasks.DeleteTask(task.ID, carol.ID), ErrNotTeamMember)
	require.NoError(t, env.tasks.DeleteTask(task.ID, alice.ID))
	require.ErrorIs(t, env.tasks.DeleteTask(task.ID, alice.ID), ErrTaskNotFound)

	var comments int64
	env.db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, comments)
}

func TestTaskService_Comments(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "T", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleMember)
	task := testutil.CreateTask(t, env.db, team, alice, "Discuss")

	first, err := env.tasks.AddComment(AddCommentInput{TaskID: task.ID, UserID: alice.ID, Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, first.UserID)
	assert.Equal(t, "alice", first.User.Username)

	_, err = env.tasks.AddComment(AddCommentInput{TaskID: task.ID, UserID: bob.ID, Content: "second"})
	require.NoError(t, err)

	_, err = env.tasks.AddComment(AddCommentInput{TaskID: task.ID, UserID: carol.ID, Content: "let me in"})
	require.ErrorIs(t, err, ErrNotTeamMember)

	_, err = env.tasks.AddComment(AddCommentInput{TaskID: task.ID, UserID: bob.ID, Content: "   "})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "content", validationErr.Field)

	comments, err := env.tasks.ListComments(task.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "first", comments[1].Content)
	assert.Equal(t, "bob", comments[0].User.Username)
}

func TestTaskService_GenerateTasks(t *testing.T) {
	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	generator := &fakeGenerator{drafts: []GeneratedTask{
		{Title: "Book venue", Priority: models.TaskPriorityHigh, DueDate: &future},
		{Title: "Send invites", Priority: models.TaskPriorityLow, DueDate: &past},
	}}

	env := setupServiceEnvWithGenerator(t, generator)
	alice := testutil.CreateUser(t, env.db, "alice")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "T", alice)

	drafts, err := env.tasks.GenerateTasks(context.Background(), GenerateTasksInput{UserID: alice.ID, TeamID: &team.ID, Text: "plan the party"})
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.NotNil(t, drafts[0].DueDate)
	assert.Nil(t, drafts[1].DueDate)

	_, err = env.tasks.GenerateTasks(context.Background(), GenerateTasksInput{UserID: carol.ID, TeamID: &team.ID, Text: "plan"})
	require.ErrorIs(t, err, ErrNotTeamMember)
	assert.Equal(t, 1, generator.calls)

	generator.err = errors.New("upstream down")
	_, err = env.tasks.GenerateTasks(context.Background(), GenerateTasksInput{UserID: alice.ID, TeamID: &team.ID, Text: "plan"})
	require.Error(t, err)

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	assert.Zero(t, count)
}

func TestTaskService_GenerateTasksWithoutGenerator(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	team := testutil.CreateTeam(t, env.db, "T", alice)

	_, err := env.tasks.GenerateTasks(context.Background(), GenerateTasksInput{UserID: alice.ID, TeamID: &team.ID, Text: "plan"})
	require.ErrorIs(t, err, ErrAIUnavailable)
}
