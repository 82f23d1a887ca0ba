package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/testutil"
	"gorm.io/gorm"
)

func TestUserRepository_CreateWithProfile(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Username: "alice", PasswordHash: "hash"}
	profile := &models.Profile{}
	require.NoError(t, repo.CreateWithProfile(user, profile))
	assert.Equal(t, user.ID, profile.UserID)

	err := repo.CreateWithProfile(&models.User{Username: "alice", PasswordHash: "hash"}, &models.Profile{})
	assert.ErrorIs(t, err, ErrCreateUser)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	assert.EqualValues(t, 1, profiles)
}

func TestUserRepository_Search(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	testutil.CreateUser(t, db, "bob")
	testutil.CreateUser(t, db, "alice")
	carol := testutil.CreateUser(t, db, "carol")
	carol.LastName = "Alison"
	require.NoError(t, db.Save(carol).Error)

	users, err := repo.Search("ALI", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)

	users, err = repo.Search("ali", 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_FirstOrCreateProfile(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	user := &models.User{Username: "legacy", PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)

	profile, err := repo.FirstOrCreateProfile(user.ID)
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)

	again, err := repo.FirstOrCreateProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestUserRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "userAx")
	testutil.CreateUser(t, db, "user_x")
	testutil.CreateUser(t, db, "50%off")

	tests := []struct {
		query string
		want  []string
	}{
		{"_", []string{"user_x"}},
		{"%", []string{"50%off"}},
		{"user_x", []string{"user_x"}},
		{"USER_", []string{"user_x"}},
		{"!", nil},
		{"user", []string{"userAx", "user_x"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			users, err := repo.Search(tt.query, 10)
			require.NoError(t, err)

			var got []string
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
