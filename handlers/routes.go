package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups every resource handler mounted under /api.
type Handlers struct {
	Auth       *AuthHandler
	Article    *ArticleHandler
	Tag        *TagHandler
	Statistics *StatisticsHandler
}

// RegisterRoutes mounts the API. Everything except signup, login, logout
// and the health check sits behind auth.
func RegisterRoutes(router *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/signup", h.Auth.Signup)
			users.POST("/login", h.Auth.Login)
			users.POST("/logout", h.Auth.Logout)
		}

		protected := api.Group("/")
		protected.Use(auth)
		{
			protected.GET("/users", h.Auth.GetUsers)
			protected.GET("/users/profile", h.Auth.GetProfile)

			articles := protected.Group("/articles")
			{
				articles.POST("", h.Article.CreateArticle)
				articles.GET("", h.Article.GetArticles)
				articles.PUT("/update-approval-status", h.Article.UpdateApprovalStatus)
				articles.DELETE("/bulk-delete", h.Article.BulkDelete)
				articles.GET("/:id", h.Article.GetArticle)
				articles.PUT("/:id", h.Article.UpdateArticle)
				articles.DELETE("/:id", h.Article.DeleteArticle)
			}

			tags := protected.Group("/tags")
			{
				tags.POST("", h.Tag.CreateTag)
				tags.GET("", h.Tag.GetTags)
				tags.GET("/search-name", h.Tag.SearchByName)
				tags.GET("/:id", h.Tag.GetTag)
			}

			statistics := protected.Group("/statistics/players_statistics")
			{
				statistics.POST("", h.Statistics.UpsertPlayer)
				statistics.PUT("", h.Statistics.UpdatePlayer)
				statistics.GET("/:id", h.Statistics.GetStatistics)
			}
		}
	}
}
