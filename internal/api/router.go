package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/cache"
	"github.com/featherpress/featherpress/internal/db"
	"github.com/featherpress/featherpress/internal/services"
	"github.com/featherpress/featherpress/internal/storage"
	"github.com/featherpress/featherpress/pkg/config"
	"github.com/featherpress/featherpress/pkg/logging"
)

// Router sets up API routes
type Router struct {
	gate     *auth.Gate
	authH    *AuthHandler
	posts    *PostHandler
	taxonomy *TaxonomyHandler
	comments *CommentHandler
	mentions *WebmentionHandler
	roles    *RoleHandler
	site     *SiteHandler
	uploads  *UploadHandler
	logger   *zap.Logger
}

// NewRouter wires the repositories, the authorization gate and every service
// behind the HTTP handlers
func NewRouter(database *db.DB, redisCache *cache.Cache, blobs *storage.Store, cfg *config.Config) *Router {
	registerValidations()

	repo := db.NewRepository(database.DB)
	users := db.NewUserRepository(repo)
	roles := db.NewRoleRepository(repo)
	sessions := db.NewSessionRepository(repo)
	posts := db.NewPostRepository(repo)
	taxonomy := db.NewTaxonomyRepository(repo)
	comments := db.NewCommentRepository(repo)
	likes := db.NewLikeRepository(repo)
	mentions := db.NewWebmentionRepository(repo)
	files := db.NewFileRepository(repo)
	site := db.NewSiteRepository(repo)

	sessionSvc := auth.NewSessions(sessions, users, cfg.Auth.SessionTTL)
	gate := auth.NewGate(sessionSvc, roles, redisCache)

	blogSvc := services.NewBlogService(posts, likes, gate)
	likeSvc := services.NewLikeService(likes, posts)
	taxonomySvc := services.NewTaxonomyService(taxonomy, gate)
	commentSvc := services.NewCommentService(comments, posts, gate)
	mentionSvc := services.NewWebmentionService(mentions, posts, gate)
	uploadSvc := services.NewUploadService(files, blobs, gate, cfg.Media.MaxUploadSize)
	siteSvc := services.NewSiteService(site, gate)
	roleSvc := services.NewRoleService(roles, gate)
	userSvc := services.NewUserService(users, roles, sessionSvc)

	return &Router{
		gate:     gate,
		authH:    NewAuthHandler(userSvc),
		posts:    NewPostHandler(blogSvc, likeSvc),
		taxonomy: NewTaxonomyHandler(taxonomySvc),
		comments: NewCommentHandler(commentSvc),
		mentions: NewWebmentionHandler(mentionSvc),
		roles:    NewRoleHandler(roleSvc),
		site:     NewSiteHandler(siteSvc),
		uploads:  NewUploadHandler(uploadSvc),
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(RequestID())
	engine.Use(Tracing())
	engine.Use(Identity(r.gate))

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	authGroup := engine.Group("/auth")
	{
		authGroup.POST("/register", r.authH.Register)
		authGroup.POST("/login", r.authH.Login)
		authGroup.POST("/logout", r.authH.Logout)
		authGroup.GET("/me", r.authH.Me)
		authGroup.PUT("/me", r.authH.UpdateProfile)
	}

	postGroup := engine.Group("/posts")
	{
		postGroup.GET("", r.posts.List)
		postGroup.POST("", r.posts.Create)
		// single-post reads are keyed by slug; the shared :id name keeps
		// gin's routing tree free of wildcard conflicts
		postGroup.GET("/:id", r.posts.Get)
		postGroup.PUT("/:id", r.posts.Update)
		postGroup.DELETE("/:id", r.posts.Delete)
		postGroup.POST("/:id/view", r.posts.View)
		postGroup.POST("/:id/like", r.posts.Like)
		postGroup.DELETE("/:id/like", r.posts.Unlike)
		postGroup.GET("/:id/likes", r.posts.Likes)
		postGroup.GET("/:id/comments", r.comments.ListByPost)
		postGroup.POST("/:id/comments", r.comments.Create)
		postGroup.GET("/:id/webmentions", r.mentions.ListByPost)
		postGroup.POST("/:id/webmentions", r.mentions.Create)
	}

	categoryGroup := engine.Group("/categories")
	{
		categoryGroup.GET("", r.taxonomy.ListCategories)
		categoryGroup.POST("", r.taxonomy.CreateCategory)
		categoryGroup.GET("/:id", r.taxonomy.GetCategory)
		categoryGroup.PUT("/:id", r.taxonomy.UpdateCategory)
		categoryGroup.DELETE("/:id", r.taxonomy.DeleteCategory)
	}

	tagGroup := engine.Group("/tags")
	{
		tagGroup.GET("", r.taxonomy.ListTags)
		tagGroup.POST("", r.taxonomy.CreateTag)
		tagGroup.GET("/:id", r.taxonomy.GetTag)
		tagGroup.PUT("/:id", r.taxonomy.UpdateTag)
		tagGroup.DELETE("/:id", r.taxonomy.DeleteTag)
	}

	commentGroup := engine.Group("/comments")
	{
		commentGroup.PUT("/:id", r.comments.Update)
		commentGroup.DELETE("/:id", r.comments.Delete)
	}

	mentionGroup := engine.Group("/webmentions")
	{
		mentionGroup.PUT("/:id/status", r.mentions.SetStatus)
		mentionGroup.DELETE("/:id", r.mentions.Delete)
	}

	roleGroup := engine.Group("/roles")
	{
		roleGroup.GET("", r.roles.List)
		roleGroup.POST("", r.roles.Create)
		roleGroup.GET("/permissions", r.roles.ListPermissions)
		roleGroup.GET("/:id", r.roles.Get)
		roleGroup.PUT("/:id", r.roles.Update)
		roleGroup.DELETE("/:id", r.roles.Delete)
	}

	siteGroup := engine.Group("/site")
	{
		siteGroup.GET("/info", r.site.Info)
		siteGroup.GET("/features", r.site.Features)
		siteGroup.GET("/extensions", r.site.Extensions)
		siteGroup.GET("/theme", r.site.ActiveTheme)
		siteGroup.PUT("/extension/:slug", r.site.SetExtensionStatus)
		siteGroup.PATCH("/settings", r.site.UpdateSettings)
	}

	themeGroup := engine.Group("/themes")
	{
		themeGroup.GET("", r.site.ListThemes)
		themeGroup.GET("/active", r.site.ActiveTheme)
		themeGroup.PUT("/:id/activate", r.site.ActivateTheme)
	}

	uploadGroup := engine.Group("/upload")
	{
		uploadGroup.POST("", r.uploads.Upload)
		uploadGroup.GET("", r.uploads.List)
		uploadGroup.GET("/:id", r.uploads.Get)
		uploadGroup.GET("/:id/download", r.uploads.Download)
		uploadGroup.DELETE("/:id", r.uploads.Delete)
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "featherpress-api",
	})
}
