package v1

import (
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ApplicantHandler struct {
	applicantUC domain.ApplicantUsecase
}

func NewApplicantHandler(public *gin.RouterGroup, protected *gin.RouterGroup, applicantUC domain.ApplicantUsecase) {
	handler := &ApplicantHandler{applicantUC: applicantUC}

	// The accept action is reachable without a token
	public.POST("/applicants/:id/accept", handler.Accept)

	applicants := protected.Group("/applicants")
	{
		applicants.POST("", handler.Create)
		applicants.GET("", handler.List)
		applicants.GET("/summary", handler.Summary)
		applicants.GET("/export", handler.Export)
		applicants.GET("/:id", handler.Get)
	}
}

// Accept godoc
// @Summary      Accept an applicant
// @Description  Creates an Author admin account and a profile for the applicant, then marks it accepted
// @Tags         applicants
// @Produce      json
// @Param        id   path      int  true  "Applicant ID"
// @Success      200  {object}  response.Response{data=domain.AcceptResult}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applicants/{id}/accept [post]
func (h *ApplicantHandler) Accept(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.applicantUC.Accept(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicant accepted", result)
}

// Create godoc
// @Summary      Create an applicant
// @Tags         applicants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        applicant  body      dataBody[domain.CreateApplicantInput]  true  "Applicant"
// @Success      201        {object}  response.Response{data=domain.Applicant}
// @Failure      400        {object}  response.Response
// @Failure      401        {object}  response.Response
// @Router       /applicants [post]
func (h *ApplicantHandler) Create(c *gin.Context) {
	var req dataBody[domain.CreateApplicantInput]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	applicant, err := h.applicantUC.Create(c.Request.Context(), req.Data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Applicant created", applicant)
}

// List godoc
// @Summary      List applicants
// @Description  Newest first, with the CV file populated
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number (default: 1)"
// @Param        pageSize  query     int  false  "Items per page (default: 25, max: 100)"
// @Success      200       {object}  response.Response{data=[]domain.Applicant}
// @Failure      401       {object}  response.Response
// @Router       /applicants [get]
func (h *ApplicantHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	applicants, pagination, err := h.applicantUC.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Applicants retrieved", applicants, pagination)
}

// Get godoc
// @Summary      Get an applicant
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Applicant ID"
// @Success      200  {object}  response.Response{data=domain.Applicant}
// @Failure      404  {object}  response.Response
// @Router       /applicants/{id} [get]
func (h *ApplicantHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	applicant, err := h.applicantUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicant retrieved", applicant)
}

// Summary godoc
// @Summary      Applicant counts
// @Description  Totals by status and by university for the applicant manager
// @Tags         applicants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.ApplicantSummary}
// @Router       /applicants/summary [get]
func (h *ApplicantHandler) Summary(c *gin.Context) {
	summary, err := h.applicantUC.Summary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicant summary retrieved", summary)
}

// Export godoc
// @Summary      Export applicants
// @Description  Downloads every applicant as an Excel or CSV file
// @Tags         applicants
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        format  query     string  false  "Export format (xlsx, csv). Default: xlsx"
// @Success      200     {file}    binary
// @Failure      400     {object}  response.Response
// @Router       /applicants/export [get]
func (h *ApplicantHandler) Export(c *gin.Context) {
	file, err := h.applicantUC.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
