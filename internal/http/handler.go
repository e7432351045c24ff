package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogmanity/internal/domain"
	"blogmanity/internal/service"
	"blogmanity/internal/storage"
	"blogmanity/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	posts    service.PostService
	pockets  service.PocketService
	feedback service.FeedbackService
	tokens   *token.Service
	storage  storage.Service
	bucket   string
	prefix   string

	cookieTTL    time.Duration
	secureCookie bool
	devMode      bool
	logger       *logrus.Logger
}

// Options collects the handler configuration main assembles from Config.
type Options struct {
	Tokens       *token.Service
	Storage      storage.Service
	Bucket       string
	KeyPrefix    string
	CookieTTL    time.Duration
	SecureCookie bool
	DevMode      bool
	Logger       *logrus.Logger
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	pockets service.PocketService,
	feedback service.FeedbackService,
	opts Options,
) *Handler {
	return &Handler{
		users:        users,
		posts:        posts,
		pockets:      pockets,
		feedback:     feedback,
		tokens:       opts.Tokens,
		storage:      opts.Storage,
		bucket:       opts.Bucket,
		prefix:       opts.KeyPrefix,
		cookieTTL:    opts.CookieTTL,
		secureCookie: opts.SecureCookie,
		devMode:      opts.DevMode,
		logger:       opts.Logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	users := api.Group("/users")
	{
		users.POST("/signup", h.signup)
		users.POST("/login", h.login)
		users.GET("/logout", h.logout)
		users.POST("/forgotPassword", h.forgotPassword)
		users.PATCH("/resetPassword/:token", h.resetPassword)

		authed := users.Group("", h.requireAuth())

		self := authed.Group("", h.requireRole(domain.RoleUser))
		{
			self.GET("/myPocket", h.getPocket)
			self.PATCH("/myPocket/add/:postId", h.addPostToPocket)
			self.PATCH("/myPocket/remove/:postId", h.removePostFromPocket)
			self.GET("/myPosts", h.getMyPosts)
			self.PATCH("/updatePassword", h.updatePassword)
			self.PATCH("/updateMe", h.updateMe)
			self.GET("/me", h.getMe)
			self.PATCH("/deleteMe", h.deleteMe)
		}

		admin := authed.Group("", h.requireRole(domain.RoleAdmin))
		{
			admin.GET("", h.listUsers)
			admin.GET("/:id", h.getUser)
			admin.PATCH("/:id", h.updateUser)
			admin.DELETE("/:id", h.deleteUser)
		}
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.maybeAdmin(), h.listPosts)
		posts.POST("", h.requireAuth(), h.requireRole(domain.RoleUser), h.createPost)
		posts.GET("/:id", h.requireAuth(), h.getPost)
		posts.PATCH("/:id", h.requireAuth(), h.updatePost)
		posts.DELETE("/:id", h.requireAuth(), h.deletePost)

		feedback := posts.Group("/:id/feedback", h.requireAuth())
		{
			feedback.GET("", h.listPostFeedback)
			feedback.POST("", h.requireRole(domain.RoleUser), h.createFeedback)
			feedback.GET("/:feedbackId", h.getFeedback)
			feedback.PATCH("/:feedbackId", h.updateFeedback)
			feedback.DELETE("/:feedbackId", h.deleteFeedback)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
