package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getPocket(c *gin.Context) {
	user, _ := currentUser(c)

	pocket, err := h.pockets.Get(c.Request.Context(), user.ID)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"pocket": h.pocketDoc(c, pocket)})
}

func (h *Handler) addPostToPocket(c *gin.Context) {
	user, _ := currentUser(c)

	postID, err := parseID(c.Param("postId"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	pocket, err := h.pockets.AddPost(c.Request.Context(), user.ID, postID)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"pocket": h.pocketDoc(c, pocket)})
}

func (h *Handler) removePostFromPocket(c *gin.Context) {
	user, _ := currentUser(c)

	postID, err := parseID(c.Param("postId"), "post")
	if err != nil {
		h.error(c, err)
		return
	}

	pocket, err := h.pockets.RemovePost(c.Request.Context(), user.ID, postID)
	if err != nil {
		h.error(c, err)
		return
	}

	success(c, http.StatusOK, gin.H{"pocket": h.pocketDoc(c, pocket)})
}
