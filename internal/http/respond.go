package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/query"
)

func success(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

func successList(c *gin.Context, results int, data gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": results,
		"data":    data,
	})
}

// error renders err as the response envelope. Operational errors keep their
// status and message; anything else is logged and surfaced generically, with
// full detail only in development mode.
func (h *Handler) error(c *gin.Context, err error) {
	appErr := apperr.From(err)

	status := "fail"
	if appErr.Status >= http.StatusInternalServerError {
		status = "error"
		h.logger.WithError(err).WithFields(logFields(c)).Error("request failed")
	}

	payload := gin.H{
		"status":  status,
		"message": appErr.Message,
	}
	if h.devMode {
		payload["error"] = err.Error()
	}
	c.JSON(appErr.Status, payload)
}

func logFields(c *gin.Context) map[string]interface{} {
	return map[string]interface{}{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}
}

// photoURL resolves a stored photo key to a presigned URL when object
// storage is configured; otherwise the key passes through untouched.
func (h *Handler) photoURL(ctx context.Context, key string) string {
	if key == "" || h.storage == nil || h.bucket == "" {
		return key
	}
	url, err := h.storage.ObjectURL(ctx, h.bucket, key, 15*time.Minute)
	if err != nil {
		h.logger.WithError(err).Warn("presign photo url")
		return key
	}
	return url
}

func (h *Handler) userDoc(c *gin.Context, user *domain.User, adminView bool) gin.H {
	doc := gin.H{
		"id":        user.ID,
		"firstname": user.Firstname,
		"lastname":  user.Lastname,
		"email":     user.Email,
		"photo":     h.photoURL(c.Request.Context(), user.Photo),
	}
	if adminView {
		doc["role"] = string(user.Role)
		doc["active"] = user.Active
		doc["createdAt"] = user.CreatedAt.Format(time.RFC3339)
		doc["updatedAt"] = user.UpdatedAt.Format(time.RFC3339)
	}
	return doc
}

func (h *Handler) authorDoc(c *gin.Context, author *domain.UserSummary) gin.H {
	if author == nil {
		return nil
	}
	return gin.H{
		"id":        author.ID,
		"firstname": author.Firstname,
		"lastname":  author.Lastname,
		"photo":     h.photoURL(c.Request.Context(), author.Photo),
	}
}

func (h *Handler) postDoc(c *gin.Context, post *domain.Post, includeContent bool) gin.H {
	doc := gin.H{
		"id":          post.ID,
		"title":       post.Title,
		"tags":        post.Tags,
		"description": post.Description,
		"photo":       h.photoURL(c.Request.Context(), post.Photo),
		"readTime":    post.ReadTime,
		"validated":   post.Validated,
		"createdAt":   post.CreatedAt.Format(time.RFC3339),
		"updatedAt":   post.UpdatedAt.Format(time.RFC3339),
		"user":        h.authorDoc(c, post.Author),
	}
	if includeContent {
		doc["content"] = post.Content
	}
	return doc
}

func (h *Handler) feedbackDoc(c *gin.Context, fb *domain.Feedback) gin.H {
	return gin.H{
		"id":        fb.ID,
		"post":      fb.PostID,
		"type":      string(fb.Type),
		"content":   fb.Content,
		"createdAt": fb.CreatedAt.Format(time.RFC3339),
		"updatedAt": fb.UpdatedAt.Format(time.RFC3339),
		"user":      h.authorDoc(c, fb.Author),
	}
}

func (h *Handler) pocketDoc(c *gin.Context, pocket *domain.Pocket) gin.H {
	posts := make([]gin.H, len(pocket.Posts))
	for i := range pocket.Posts {
		posts[i] = h.postDoc(c, &pocket.Posts[i], false)
	}
	return gin.H{
		"id":    pocket.ID,
		"user":  pocket.UserID,
		"posts": posts,
	}
}

// project applies the requested field allow-list to a list of documents.
func project(docs []gin.H, fields []string) []gin.H {
	if len(fields) == 0 {
		return docs
	}
	out := make([]gin.H, len(docs))
	for i, doc := range docs {
		out[i] = query.Project(doc, fields)
	}
	return out
}
