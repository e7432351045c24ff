package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blogmanity/internal/apperr"
	"blogmanity/internal/query"
	"blogmanity/internal/service"
)

type createPostRequest struct {
	Title       string   `json:"title" binding:"required,min=3"`
	Tags        []string `json:"tags" binding:"required,min=1"`
	Description string   `json:"description" binding:"required"`
	Content     string   `json:"content" binding:"required"`
}

type updatePostRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=3"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	Validated   *bool    `json:"validated"`
}

// listPosts serves the public catalogue. An authenticated admin sees every
// post with its content; everyone else gets validated posts without content.
func (h *Handler) listPosts(c *gin.Context) {
	_, adminView := currentUser(c)
	d := query.Parse(c.Request.URL.Query())

	posts, err := h.posts.List(c.Request.Context(), d, adminView)
	if err != nil {
		h.error(c, err)
		return
	}

	docs := make([]gin.H, len(posts))
	for i := range posts {
		docs[i] = h.postDoc(c, &posts[i], adminView)
	}
	successList(c, len(posts), gin.H{"posts": project(docs, d.Fields)})
}

func (h *Handler) createPost(c *gin.Context) {
	user, _ := currentUser(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(c, apperr.BadRequest(err.Error()))
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user.ID, service.PostInput{
		Title:       req.Title,
		Tags:        req.Tags,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusCreated, gin.H{"post": h.postDoc(c, post, true)})
}

func (h *Handler) getPost(c *gin.Context) {
	id, err := parseID(c.Param("id"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.error(c, err)
		return
	}

	doc := h.postDoc(c, post, true)
	feedback := make([]gin.H, len(post.Feedback))
	for i := range post.Feedback {
		feedback[i] = h.feedbackDoc(c, &post.Feedback[i])
	}
	doc["feedback"] = feedback

	success(c, http.StatusOK, gin.H{"post": doc})
}

func (h *Handler) updatePost(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := parseID(c.Param("id"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	update, err := h.bindPostUpdate(c, id)
	if err != nil {
		h.error(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), user, id, update)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"post": h.postDoc(c, post, true)})
}

// bindPostUpdate reads a partial update from either a JSON body or a
// multipart form. The multipart path exists so a cover photo can ride along
// with the text fields in one request.
func (h *Handler) bindPostUpdate(c *gin.Context, postID int64) (service.PostUpdate, error) {
	var update service.PostUpdate

	if c.ContentType() != "multipart/form-data" {
		var req updatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return update, apperr.BadRequest(err.Error())
		}
		update.Title = req.Title
		update.Tags = req.Tags
		update.Description = req.Description
		update.Content = req.Content
		update.Validated = req.Validated
		return update, nil
	}

	if v, ok := c.GetPostForm("title"); ok {
		update.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		update.Description = &v
	}
	if v, ok := c.GetPostForm("content"); ok {
		update.Content = &v
	}
	if v, ok := c.GetPostForm("tags"); ok {
		var tags []string
		if err := json.Unmarshal([]byte(v), &tags); err != nil {
			tags = strings.Split(v, ",")
			for i := range tags {
				tags[i] = strings.TrimSpace(tags[i])
			}
		}
		update.Tags = tags
	}
	if fh, err := c.FormFile("photo"); err == nil {
		key, err := h.uploadPhoto(c, fh, "post", postID)
		if err != nil {
			return update, err
		}
		update.Photo = &key
	}
	return update, nil
}

func (h *Handler) deletePost(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := parseID(c.Param("id"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), user, id); err != nil {
		h.error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) getMyPosts(c *gin.Context) {
	user, _ := currentUser(c)

	posts, err := h.posts.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.error(c, err)
		return
	}

	docs := make([]gin.H, len(posts))
	for i := range posts {
		docs[i] = h.postDoc(c, &posts[i], true)
	}
	successList(c, len(posts), gin.H{"posts": docs})
}
