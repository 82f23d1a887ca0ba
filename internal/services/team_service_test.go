package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/testutil"
)

func TestTeamService_CreateTeamMakesCreatorAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	team, err := env.teams.CreateTeam(CreateTeamInput{Name: "  Platform  ", Description: "infra", CreatorID: alice.ID})
	require.NoError(t, err)

	assert.Equal(t, "Platform", team.Name)
	assert.Equal(t, alice.ID, team.CreatedBy.ID)
	require.Len(t, team.Memberships, 1)
	assert.Equal(t, alice.ID, team.Memberships[0].UserID)
	assert.Equal(t, models.RoleAdmin, team.Memberships[0].Role)
	assert.Equal(t, "alice", team.Memberships[0].User.Username)
}

func TestTeamService_CreateTeamRequiresName(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	_, err := env.teams.CreateTeam(CreateTeamInput{Name: "   ", CreatorID: alice.ID})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)

	var count int64
	env.db.Model(&models.Team{}).Count(&count)
	assert.Zero(t, count)
}

func TestTeamService_ListTeamsForUser(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")

	mine := testutil.CreateTeam(t, env.db, "Mine", alice)
	testutil.CreateTeam(t, env.db, "Theirs", bob)

	teams, err := env.teams.ListTeamsForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, mine.ID, teams[0].ID)
}

func TestTeamService_AddMember(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "Core", alice)

	member, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, "bob", member.User.Username)
	assert.False(t, member.JoinedAt.IsZero())

	t.Run("second add is a conflict", func(t *testing.T) {
		_, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: bob.ID})
		require.ErrorIs(t, err, ErrAlreadyMember)
		assert.EqualValues(t, 2, env.memberCount(t, team.ID))
	})

	t.Run("non-admin cannot add", func(t *testing.T) {
		carol := testutil.CreateUser(t, env.db, "carol")
		_, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: bob.ID, UserID: carol.ID})
		require.ErrorIs(t, err, ErrNotTeamAdmin)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: 9999})
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := env.teams.AddMember(AddMemberInput{TeamID: 9999, ActorID: alice.ID, UserID: bob.ID})
		require.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		dave := testutil.CreateUser(t, env.db, "dave")
		_, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: dave.ID, Role: "owner"})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "role", validationErr.Field)
	})
}

func TestTeamService_RemoveSoleAdminFails(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	team := testutil.CreateTeam(t, env.db, "Solo", alice)

	err := env.teams.RemoveMember(team.ID, alice.ID, alice.ID)
	require.ErrorIs(t, err, ErrLastAdmin)

	assert.EqualValues(t, 1, env.adminCount(t, team.ID))
	assert.EqualValues(t, 1, env.memberCount(t, team.ID))
}

func TestTeamService_RemoveMember(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "Core", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleMember)

	require.ErrorIs(t, env.teams.RemoveMember(team.ID, bob.ID, alice.ID), ErrNotTeamAdmin)
	require.ErrorIs(t, env.teams.RemoveMember(team.ID, alice.ID, carol.ID), ErrMembershipNotFound)
	require.ErrorIs(t, env.teams.RemoveMember(9999, alice.ID, bob.ID), ErrTeamNotFound)

	require.NoError(t, env.teams.RemoveMember(team.ID, alice.ID, bob.ID))
	assert.EqualValues(t, 1, env.memberCount(t, team.ID))

	// A removed member can be added back.
	_, err := env.teams.AddMember(AddMemberInput{TeamID: team.ID, ActorID: alice.ID, UserID: bob.ID})
	require.NoError(t, err)
}

func TestTeamService_AdminMayLeaveWhenAnotherAdminRemains(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "Core", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleAdmin)

	require.NoError(t, env.teams.RemoveMember(team.ID, alice.ID, alice.ID))
	assert.EqualValues(t, 1, env.adminCount(t, team.ID))

	require.ErrorIs(t, env.teams.RemoveMember(team.ID, bob.ID, bob.ID), ErrLastAdmin)
}

func TestTeamService_CrossRemovalOfTwoAdminsLeavesOne(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "Core", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleAdmin)

	require.NoError(t, env.teams.RemoveMember(team.ID, alice.ID, bob.ID))
	require.ErrorIs(t, env.teams.RemoveMember(team.ID, bob.ID, alice.ID), ErrNotTeamAdmin)

	assert.EqualValues(t, 1, env.adminCount(t, team.ID))
	assert.EqualValues(t, 1, env.memberCount(t, team.ID))
}

func TestTeamService_RemoveMemberByDemotedAdminFails(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "Core", alice)
	membership := testutil.AddMember(t, env.db, team, bob, models.RoleAdmin)

	require.NoError(t, env.db.Model(membership).Update("role", models.RoleMember).Error)
	require.ErrorIs(t, env.teams.RemoveMember(team.ID, bob.ID, alice.ID), ErrNotTeamAdmin)

	assert.EqualValues(t, 1, env.adminCount(t, team.ID))
	assert.EqualValues(t, 2, env.memberCount(t, team.ID))
}

func TestTeamService_UpdateAndDeleteRequireAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	team := testutil.CreateTeam(t, env.db, "Core", alice)
	testutil.AddMember(t, env.db, team, bob, models.RoleMember)
	task := testutil.CreateTask(t, env.db, team, bob, "Ship it")
	require.NoError(t, env.db.Create(&models.Comment{TaskID: task.ID, UserID: bob.ID, Content: "on it"}).Error)

	_, err := env.teams.UpdateTeam(UpdateTeamInput{TeamID: team.ID, ActorID: bob.ID, Name: ptr("Renamed")})
	require.ErrorIs(t, err, ErrNotTeamAdmin)

	updated, err := env.teams.UpdateTeam(UpdateTeamInput{TeamID: team.ID, ActorID: alice.ID, Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.ErrorIs(t, env.teams.DeleteTeam(team.ID, bob.ID), ErrNotTeamAdmin)
	require.NoError(t, env.teams.DeleteTeam(team.ID, alice.ID))

	var tasks, comments, members int64
	env.db.Model(&models.Task{}).Count(&tasks)
	env.db.Model(&models.Comment{}).Count(&comments)
	env.db.Model(&models.TeamMembership{}).Count(&members)
	assert.Zero(t, tasks)
	assert.Zero(t, comments)
	assert.Zero(t, members)
}

func TestTeamService_GetTeamAndListMembersRequireMembership(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	carol := testutil.CreateUser(t, env.db, "carol")
	team := testutil.CreateTeam(t, env.db, "Core", alice)

	_, err := env.teams.GetTeam(team.ID, carol.ID)
	require.ErrorIs(t, err, ErrNotTeamMember)
	_, err = env.teams.ListMembers(team.ID, carol.ID)
	require.ErrorIs(t, err, ErrNotTeamMember)

	members, err := env.teams.ListMembers(team.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].User.Username)
}
