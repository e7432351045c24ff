package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/service"
)

type signupRequest struct {
	Firstname string `json:"firstname" binding:"required,min=2"`
	Lastname  string `json:"lastname" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type updatePasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// sendToken issues a fresh bearer token for user, attaches it as the session
// cookie and responds with the public profile.
func (h *Handler) sendToken(c *gin.Context, user *domain.User, status int) {
	tok, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.error(c, err)
		return
	}

	c.SetCookie(authCookie, tok, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)

	success(c, status, gin.H{
		"user": gin.H{
			"firstname": user.Firstname,
			"lastname":  user.Lastname,
			"email":     user.Email,
			"photo":     h.photoURL(c.Request.Context(), user.Photo),
		},
	})
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest(err.Error()))
		return
	}

	user, err := h.users.Signup(c.Request.Context(), service.SignupInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.error(c, err)
		return
	}

	h.sendToken(c, user, http.StatusCreated)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest("You must specify your email and password"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.error(c, err)
		return
	}

	h.sendToken(c, user, http.StatusOK)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(authCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest("Please provide your email to reset you password"))
		return
	}

	scheme := "http"
	if c.Request.TLS != nil || h.secureCookie {
		scheme = "https"
	}
	resetURLBase := scheme + "://" + c.Request.Host + "/api/v1/users/resetPassword"

	if err := h.users.ForgotPassword(c.Request.Context(), req.Email, resetURLBase); err != nil {
		h.error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "token sent successfully, check your email",
	})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest("Please provide a password"))
		return
	}

	user, err := h.users.ResetPassword(c.Request.Context(), req.Email, c.Param("token"), req.Password)
	if err != nil {
		h.error(c, err)
		return
	}

	h.sendToken(c, user, http.StatusOK)
}

func (h *Handler) updatePassword(c *gin.Context) {
	user, _ := currentUser(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest(err.Error()))
		return
	}

	updated, err := h.users.UpdatePassword(c.Request.Context(), user.ID, req.Password, req.NewPassword)
	if err != nil {
		h.error(c, err)
		return
	}

	h.sendToken(c, updated, http.StatusOK)
}
