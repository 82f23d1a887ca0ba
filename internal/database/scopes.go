package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/team-task-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// MemberTeamIDs selects the IDs of the teams userID belongs to, for use as a subquery.
func MemberTeamIDs(db *gorm.DB, userID uint64) *gorm.DB {
	return db.Table("team_memberships").Select("team_id").Where("user_id = ?", userID)
}

// LikeEscape is the escape character used with ContainsPattern. Backslash is
// avoided because MySQL treats it as a string-literal escape.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// ContainsPattern returns a LIKE pattern matching s literally as a lower-cased
// substring. Conditions using it must add ESCAPE '!'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
