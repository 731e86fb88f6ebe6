package v1

import (
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the read routes of one published content type.
type ContentHandler[T any] struct {
	contentUC domain.ContentUsecase[T]
	noun      string
}

func NewContentHandler[T any](public *gin.RouterGroup, path, noun string, contentUC domain.ContentUsecase[T]) {
	handler := &ContentHandler[T]{contentUC: contentUC, noun: noun}

	group := public.Group(path)
	{
		group.GET("", handler.Find)
		group.GET("/:id", handler.FindOne)
	}
}

// Find godoc
// @Summary      List published content
// @Description  Lists published articles or landing pages
// @Tags         content
// @Produce      json
// @Param        page      query     int  false  "Page number (default: 1)"
// @Param        pageSize  query     int  false  "Items per page (default: 25, max: 100)"
// @Success      200       {object}  response.Response
// @Router       /articles [get]
// @Router       /landingpages [get]
func (h *ContentHandler[T]) Find(c *gin.Context) {
	page, pageSize := pageParams(c)

	items, pagination, err := h.contentUC.Find(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, h.noun+" retrieved", items, pagination)
}

// FindOne godoc
// @Summary      Get published content
// @Description  Reading an article bumps its views; reading a landing page counts a daily visit
// @Tags         content
// @Produce      json
// @Param        id   path      int  true  "Content ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /articles/{id} [get]
// @Router       /landingpages/{id} [get]
func (h *ContentHandler[T]) FindOne(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	item, err := h.contentUC.FindOne(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, h.noun+" retrieved", item)
}
