package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/repository"
)

// authCookie is the single bearer-token transport.
const authCookie = "jwt"

const userContextKey = "currentUser"

// requireAuth resolves the bearer cookie to a user and attaches it to the
// request context, or rejects the request with 401.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.authenticate(c)
		if err != nil {
			h.error(c, err)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// maybeAdmin runs the same checks as requireAuth but never rejects: the
// identity is attached only when everything validates and the caller is an
// admin, otherwise the request continues anonymously. Used where the
// response shape varies by privilege.
func (h *Handler) maybeAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := h.authenticate(c); err == nil && user.Role == domain.RoleAdmin {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

// requireRole enforces an exact role match on the already-attached identity.
// There is no hierarchy: an admin does not pass a check requiring "user".
func (h *Handler) requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			h.error(c, apperr.Unauthorized("You are not logged in, please login to continue"))
			c.Abort()
			return
		}
		if user.Role != role {
			h.error(c, apperr.Forbidden("You are not allowed to access this route"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate performs the full token-to-user resolution: cookie present,
// signature and expiry valid, user still exists and is active, password not
// changed after the token was issued.
func (h *Handler) authenticate(c *gin.Context) (*domain.User, error) {
	raw, err := c.Cookie(authCookie)
	if err != nil || raw == "" {
		return nil, apperr.Unauthorized("You are not logged in, please login to continue")
	}

	userID, issuedAt, err := h.tokens.Verify(raw)
	if err != nil {
		return nil, apperr.Unauthorized("You are not logged in, please login to continue")
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("This user does not exist")
		}
		return nil, err
	}
	if !user.Active {
		// deactivated accounts look exactly like deleted ones
		return nil, apperr.Unauthorized("This user does not exist")
	}

	if user.PasswordChangedAfter(issuedAt) {
		return nil, apperr.Unauthorized("You recently changed your password, please login to continue")
	}

	return user, nil
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
