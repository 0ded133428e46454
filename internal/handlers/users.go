package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/service"
)

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (h HandlerSet) sendAuthResponse(c *gin.Context, status int, result service.AuthResult) {
	c.JSON(status, authResponse{
		User:  newUserResponse(result.User, h.now()),
		Token: result.Token,
	})
}

// bindFiles attaches the named multipart files. The returned func closes them.
func bindFiles(c *gin.Context, targets map[string]**service.FileUpload) (func(), error) {
	closers := make([]func(), 0, len(targets))
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}
	for field, dst := range targets {
		upload, closeFn, err := formFile(c, field)
		closers = append(closers, closeFn)
		if err != nil {
			closeAll()
			return func() {}, err
		}
		*dst = upload
	}
	return closeAll, nil
}

func (h HandlerSet) Signup(c *gin.Context) {
	var input service.SignupInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	closeFiles, err := bindFiles(c, map[string]**service.FileUpload{
		"profileImage": &input.ProfileImage,
		"nbiClearance": &input.NBIClearance,
		"fitToWork":    &input.FitToWork,
		"governmentId": &input.GovernmentID,
	})
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeFiles()

	result, err := h.auth.Signup(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sendAuthResponse(c, http.StatusCreated, result)
}

func (h HandlerSet) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sendAuthResponse(c, http.StatusOK, result)
}

func (h HandlerSet) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(currentUser(c), h.now())})
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users, h.now()))
}

func (h HandlerSet) ListUsersByRole(c *gin.Context) {
	users, err := h.users.ListByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users, h.now()))
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

func (h HandlerSet) UpdateUser(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	closeFiles, err := bindFiles(c, map[string]**service.FileUpload{
		"profileImage": &input.ProfileImage,
	})
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeFiles()

	user, err := h.users.UpdateProfile(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

func (h HandlerSet) VerifyUser(c *gin.Context) {
	user, err := h.users.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

func (h HandlerSet) UnverifyUser(c *gin.Context) {
	user, err := h.users.Unverify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h HandlerSet) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.ChangeRole(c.Request.Context(), currentUser(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

type changeRequestRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Active *bool  `json:"active"`
}

func (h HandlerSet) ChangeRequest(c *gin.Context) {
	var req changeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := h.users.ChangeRequest(c.Request.Context(), c.Param("id"), req.Kind, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, h.now()))
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
