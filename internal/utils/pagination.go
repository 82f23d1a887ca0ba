package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/constants"
)

// PaginationParams holds the pagination parameters. Limit 0 means unbounded.
type PaginationParams struct {
	Limit  int
	Offset int
}

// GetPaginationParams extracts limit/offset query parameters. Missing or
// invalid values fall back to an unbounded first page; limits above the
// maximum are clamped.
func GetPaginationParams(c *gin.Context) PaginationParams {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}
	if limit > constants.MaxTaskPageSize {
		limit = constants.MaxTaskPageSize
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}
