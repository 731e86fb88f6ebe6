package v1

import (
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/imaging"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

// NewProfileHandler registers profile routes. The self-service routes identify
// the member by the userId query parameter.
func NewProfileHandler(public *gin.RouterGroup, profileUC domain.ProfileUsecase, uploadLimiter gin.HandlerFunc) {
	handler := &ProfileHandler{profileUC: profileUC}

	profiles := public.Group("/profiles")
	{
		profiles.GET("/me", handler.GetMe)
		profiles.PUT("/me", handler.UpdateMe)
		profiles.POST("/me/avatar", uploadLimiter, handler.UpdateAvatar)
		profiles.PUT("/me/password", handler.ChangePassword)

		profiles.GET("", handler.Find)
		profiles.GET("/:id", handler.FindOne)
		profiles.PUT("/:id", handler.Update)
	}
}

// GetMe godoc
// @Summary      Get own profile
// @Description  Returns the profile of userId with avatar and user populated
// @Tags         profiles
// @Produce      json
// @Param        userId  query     int  true  "Admin user ID"
// @Success      200     {object}  response.Response{data=domain.Profile}
// @Failure      404     {object}  response.Response
// @Router       /profiles/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.GetMe(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Description  Updates the profile and account fields present in the body in one transaction; missing fields keep their value
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        userId   query     int                               true  "Admin user ID"
// @Param        profile  body      dataBody[domain.UpdateMeInput]  true  "Profile and account fields"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /profiles/me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dataBody[domain.UpdateMeInput]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.profileUC.UpdateMe(c.Request.Context(), userID, req.Data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// UpdateAvatar godoc
// @Summary      Upload avatar
// @Description  Accepts one image (jpg, png, gif, webp; max 5 MB), stores a 1200px JPEG and links it to the profile
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        userId  query     int   true  "Admin user ID"
// @Param        files   formData  file  true  "Avatar image"
// @Success      200     {object}  response.Response{data=domain.File}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Failure      429     {object}  response.Response
// @Router       /profiles/me/avatar [post]
func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	header, err := c.FormFile("files")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if header.Size > imaging.MaxUploadBytes {
		c.Error(apperror.BadRequest(imaging.ErrTooLarge.Error()))
		return
	}

	f, err := header.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Could not read uploaded file"))
		return
	}

	file, err := h.profileUC.UpdateAvatar(c.Request.Context(), userID, domain.Upload{Filename: header.Filename, Data: data})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Avatar updated", file)
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        userId    query     int                                       true  "Admin user ID"
// @Param        password  body      dataBody[domain.ChangePasswordInput]  true  "Current and new password"
// @Success      200       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /profiles/me/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dataBody[domain.ChangePasswordInput]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	if err := h.profileUC.ChangePassword(c.Request.Context(), userID, req.Data); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Password updated", nil)
}

// Find godoc
// @Summary      List profiles of a user
// @Tags         profiles
// @Produce      json
// @Param        userId  query     int  false  "Admin user ID"
// @Success      200     {object}  response.Response{data=[]domain.Profile}
// @Router       /profiles [get]
func (h *ProfileHandler) Find(c *gin.Context) {
	userID, err := queryUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	profiles, err := h.profileUC.Find(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profiles retrieved", profiles)
}

// FindOne godoc
// @Summary      Get a profile
// @Tags         profiles
// @Produce      json
// @Param        id   path      int  true  "Profile ID"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      404  {object}  response.Response
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) FindOne(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.FindOne(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// Update godoc
// @Summary      Update a profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id       path      int                                      true  "Profile ID"
// @Param        profile  body      dataBody[domain.UpdateProfileInput]  true  "Profile fields"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /profiles/{id} [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dataBody[domain.UpdateProfileInput]
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.profileUC.Update(c.Request.Context(), id, req.Data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}
