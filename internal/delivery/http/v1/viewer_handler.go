package v1

import (
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ViewerHandler struct {
	viewerUC domain.ViewerUsecase
}

func NewViewerHandler(public *gin.RouterGroup, viewerUC domain.ViewerUsecase) {
	handler := &ViewerHandler{viewerUC: viewerUC}
	public.GET("/viewers/stats", handler.Stats)
}

// Stats godoc
// @Summary      Aggregated page views
// @Description  Sums daily view counts since the start of range, bucketed by day (YYYY-MM-DD) or month (YYYY-MM)
// @Tags         viewers
// @Produce      json
// @Param        range  query     string  false  "today (default), week or month"
// @Param        group  query     string  false  "day (default) or month"
// @Success      200    {object}  response.Response{data=[]domain.StatPoint}
// @Failure      400    {object}  response.Response
// @Router       /viewers/stats [get]
func (h *ViewerHandler) Stats(c *gin.Context) {
	points, err := h.viewerUC.Stats(c.Request.Context(), c.Query("range"), c.Query("group"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "View stats retrieved", points)
}
