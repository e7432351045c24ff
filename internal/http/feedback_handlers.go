package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/query"
)

type createFeedbackRequest struct {
	Type    string `json:"type" binding:"required,oneof=like comment"`
	Content string `json:"content"`
}

type updateFeedbackRequest struct {
	Content string `json:"content"`
}

func (h *Handler) listPostFeedback(c *gin.Context) {
	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	d := query.Parse(c.Request.URL.Query())
	feedback, err := h.feedback.ListForPost(c.Request.Context(), postID, d)
	if err != nil {
		h.error(c, err)
		return
	}

	docs := make([]gin.H, len(feedback))
	for i := range feedback {
		docs[i] = h.feedbackDoc(c, &feedback[i])
	}
	successList(c, len(feedback), gin.H{"feedback": project(docs, d.Fields)})
}

func (h *Handler) createFeedback(c *gin.Context) {
	user, _ := currentUser(c)

	postID, err := parseID(c.Param("id"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest("feedback must have a type"))
		return
	}

	fb, err := h.feedback.Create(c.Request.Context(), user.ID, postID, domain.FeedbackType(req.Type), req.Content)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusCreated, gin.H{
		"type":     string(fb.Type),
		"feedback": h.feedbackDoc(c, fb),
	})
}

func (h *Handler) getFeedback(c *gin.Context) {
	id, err := parseID(c.Param("feedbackId"), "feedback")
	if err != nil {
		h.error(c, err)
		return
	}

	fb, err := h.feedback.Get(c.Request.Context(), id)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"feedback": h.feedbackDoc(c, fb)})
}

func (h *Handler) updateFeedback(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := parseID(c.Param("feedbackId"), "feedback")
	if err != nil {
		h.error(c, err)
		return
	}

	var req updateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest(err.Error()))
		return
	}

	fb, err := h.feedback.Update(c.Request.Context(), user, id, req.Content)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"feedback": h.feedbackDoc(c, fb)})
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := parseID(c.Param("feedbackId"), "feedback")
	if err != nil {
		h.error(c, err)
		return
	}

	if err := h.feedback.Delete(c.Request.Context(), user, id); err != nil {
		h.error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
