package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/makkenzo/content-cms-api/internal/handler/middleware"
	"go.uber.org/zap"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	APIKeys     *APIKeyHandler
	Auth        *AuthHandler
	Schemas     *SchemaHandler
	Collections *CollectionHandler
	Popups      *PopupHandler
	Submissions *SubmissionHandler
	Public      *PublicHandler
	Uploads     *UploadHandler
}

// Gates are the authenticators routes choose from.
type Gates struct {
	Session auth.Authenticator
	APIKey  auth.Authenticator
}

// RegisterRoutes mounts the API on r. publicLimit may be nil to disable rate limiting.
func RegisterRoutes(r gin.IRouter, h Handlers, gates Gates, usage middleware.UsageRecorder, publicLimit gin.HandlerFunc, logger *zap.Logger) {
	session := middleware.Authenticate(gates.Session, nil, logger)
	either := auth.Composite{APIKey: gates.APIKey, Session: gates.Session}
	withKey := func(scopes ...string) gin.HandlerFunc {
		return middleware.Authenticate(gates.APIKey, usage, logger, scopes...)
	}
	limited := func(chain ...gin.HandlerFunc) []gin.HandlerFunc {
		if publicLimit == nil {
			return chain
		}
		// the limiter keys on the principal, so it runs after authentication
		return append([]gin.HandlerFunc{chain[0], publicLimit}, chain[1:]...)
	}

	api := r.Group("/api/v1")

	api.GET("/auth/me", session, h.Auth.Me)

	keys := api.Group("/api-keys", session)
	{
		keys.POST("", h.APIKeys.Create)
		keys.GET("", h.APIKeys.List)
		keys.PUT("/:id", h.APIKeys.Update)
		keys.DELETE("/:id", h.APIKeys.Delete)
	}

	schemas := api.Group("/schemas", session)
	{
		schemas.POST("", h.Schemas.Create)
		schemas.GET("", h.Schemas.List)
		schemas.GET("/:id", h.Schemas.Get)
		schemas.PUT("/:id", h.Schemas.Update)
		schemas.DELETE("/:id", h.Schemas.Delete)
	}

	collections := api.Group("/collections", session)
	{
		collections.POST("", h.Collections.Create)
		collections.GET("", h.Collections.List)
		collections.GET("/:id", h.Collections.Get)
		collections.PUT("/:id", h.Collections.Update)
		collections.DELETE("/:id", h.Collections.Delete)
		collections.GET("/:id/items", h.Collections.ListItems)
		collections.POST("/:id/items", h.Collections.CreateItem)
		collections.GET("/:id/items/:itemId", h.Collections.GetItem)
		collections.PUT("/:id/items/:itemId", h.Collections.UpdateItem)
		collections.DELETE("/:id/items/:itemId", h.Collections.DeleteItem)
	}

	popups := api.Group("/popups")
	{
		popups.GET("", middleware.Authenticate(either, usage, logger, apikey.ScopeReadPopup), h.Popups.List)
		popups.POST("", middleware.Authenticate(either, usage, logger, apikey.ScopeWritePopup), h.Popups.Create)
		popups.GET("/:id", session, h.Popups.Get)
		popups.PUT("/:id", session, h.Popups.Update)
		popups.DELETE("/:id", session, h.Popups.Delete)
	}

	submissions := api.Group("/form-submissions", session)
	{
		submissions.POST("", h.Submissions.Create)
		submissions.GET("", h.Submissions.List)
	}

	api.POST("/uploads", session, h.Uploads.Upload)

	public := api.Group("/public")
	{
		public.GET("/collections", limited(withKey(apikey.ScopeReadColl), h.Public.ListCollections)...)
		public.GET("/collections/:id", limited(withKey(apikey.ScopeReadColl), h.Public.GetCollection)...)
		public.POST("/collections/:id/items", limited(withKey(apikey.ScopeWriteColl), h.Public.CreateItem)...)
		if publicLimit != nil {
			public.GET("/popups", publicLimit, h.Public.ListPopups)
		} else {
			public.GET("/popups", h.Public.ListPopups)
		}
	}
}
