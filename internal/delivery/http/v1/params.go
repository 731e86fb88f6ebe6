package v1

import (
	"inys-backend/pkg/apperror"
	"strconv"

	"github.com/gin-gonic/gin"
)

// dataBody is the {"data": {...}} envelope used by write endpoints.
type dataBody[T any] struct {
	Data T `json:"data"`
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid id")
	}
	return id, nil
}

// queryUserID reads ?userId=. A missing value yields 0.
func queryUserID(c *gin.Context) (int64, error) {
	raw := c.Query("userId")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, apperror.BadRequest("userId must be a positive integer")
	}
	return id, nil
}

// pageParams reads page and pageSize. Usecases clamp the values.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	return page, pageSize
}
