package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
	"blogmanity/internal/service"
	"blogmanity/internal/storage"
)

var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// uploadPhoto stores an uploaded image and returns its object key. kind
// namespaces user photos apart from post photos.
func (h *Handler) uploadPhoto(c *gin.Context, fh *multipart.FileHeader, kind string, ownerID int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		return "", apperr.BadRequest("Only images are allowed, please upload an image.")
	}
	if h.storage == nil || h.bucket == "" {
		return "", apperr.BadRequest("photo storage is not configured")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded photo: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/img/%ss/%s-%d-%s%s", h.prefix, kind, kind, ownerID, uuid.NewString(), ext)
	if err := h.storage.UploadObject(c.Request.Context(), f, storage.UploadOptions{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: contentType,
	}); err != nil {
		return "", err
	}
	return key, nil
}

func (h *Handler) getMe(c *gin.Context) {
	user, _ := currentUser(c)
	success(c, http.StatusOK, gin.H{"user": h.userDoc(c, user, false)})
}

type updateMeRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,min=2"`
	Lastname  *string `json:"lastname" binding:"omitempty,min=2"`
}

func (h *Handler) updateMe(c *gin.Context) {
	user, _ := currentUser(c)

	var firstname, lastname, photo *string
	if c.ContentType() == "multipart/form-data" {
		if v, ok := c.GetPostForm("firstname"); ok {
			firstname = &v
		}
		if v, ok := c.GetPostForm("lastname"); ok {
			lastname = &v
		}
		if fh, err := c.FormFile("photo"); err == nil {
			key, err := h.uploadPhoto(c, fh, "user", user.ID)
			if err != nil {
				h.error(c, err)
				return
			}
			photo = &key
		}
	} else {
		var req updateMeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.error(c, apperr.BadRequest(err.Error()))
			return
		}
		firstname = req.Firstname
		lastname = req.Lastname
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, firstname, lastname, photo)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"user": h.userDoc(c, updated, false)})
}

type deleteMeRequest struct {
	Password string `json:"password"`
}

func (h *Handler) deleteMe(c *gin.Context) {
	user, _ := currentUser(c)

	var req deleteMeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		h.error(c, service.ErrWrongPassword)
		return
	}

	if err := h.users.Deactivate(c.Request.Context(), user.ID, req.Password); err != nil {
		h.error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Admin

func (h *Handler) listUsers(c *gin.Context) {
	d := query.Parse(c.Request.URL.Query())

	users, err := h.users.ListUsers(c.Request.Context(), d)
	if err != nil {
		h.error(c, err)
		return
	}

	docs := make([]gin.H, len(users))
	for i := range users {
		docs[i] = h.userDoc(c, &users[i], true)
	}
	successList(c, len(users), gin.H{"users": project(docs, d.Fields)})
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		h.error(c, err)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.error(c, userNotFound(err))
		return
	}

	success(c, http.StatusOK, gin.H{"user": h.userDoc(c, user, true)})
}

type adminUpdateUserRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,min=2"`
	Lastname  *string `json:"lastname" binding:"omitempty,min=2"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Photo     *string `json:"photo"`
	Role      *string `json:"role" binding:"omitempty,oneof=user admin"`
	Active    *bool   `json:"active"`
}

func (h *Handler) updateUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		h.error(c, err)
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest(err.Error()))
		return
	}

	update := service.AdminUserUpdate{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Photo:     req.Photo,
		Active:    req.Active,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		h.error(c, userNotFound(err))
		return
	}

	success(c, http.StatusCreated, gin.H{"user": h.userDoc(c, user, true)})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"), "user")
	if err != nil {
		h.error(c, err)
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.error(c, userNotFound(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(raw, entity string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid " + entity + " id")
	}
	return id, nil
}

func userNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("This user does not exist")
	}
	return err
}
