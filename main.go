package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"notero/handler"
	"notero/middleware"
	"notero/repository"
	"notero/services"
	"notero/usecase"
	"notero/utils"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	if os.Getenv("GO_ENV") != "test" {
		if err := utils.CheckRequiredEnv("MONGO_URI", "MONGO_DB", "JWT_SECRET_KEY"); err != nil {
			log.Fatal(err)
		}
	}
	if err := utils.InitJWT(); err != nil {
		log.Fatal(err)
	}
}

func setupRouter(client *mongo.Client, repos *repository.Repositories) *gin.Engine {
	router := gin.Default()

	notesService := &usecase.NotesService{
		NotesRepo: repos.Notes,
	}
	tagsService := usecase.NewTagsService(repos.Tags)
	userService := &usecase.UserService{
		UsersRepo: repos.Users,
	}

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		handler.HealthHandler(c, client)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", func(c *gin.Context) {
				handler.RegistrationHandler(c, userService)
			})
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, userService)
			})
		}
	}

	// Protected routes (authentication required)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		user := protected.Group("/user")
		{
			user.GET("/profile", func(c *gin.Context) {
				handler.GetUserProfileHandler(c, userService)
			})
		}

		notes := protected.Group("/notes")
		{
			notes.GET("/", func(c *gin.Context) {
				handler.GetUserNotesHandler(c, notesService)
			})
			notes.POST("/", func(c *gin.Context) {
				handler.CreateNoteHandler(c, notesService)
			})
			notes.GET("/:id", func(c *gin.Context) {
				handler.GetNoteHandler(c, notesService)
			})
			notes.PUT("/:id", func(c *gin.Context) {
				handler.UpdateNoteHandler(c, notesService)
			})
			notes.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteNoteHandler(c, notesService)
			})

			// Todo transitions
			notes.POST("/:id/done", func(c *gin.Context) {
				handler.MarkTodoAsDoneHandler(c, notesService)
			})
			notes.POST("/:id/undone", func(c *gin.Context) {
				handler.MarkTodoAsNotDoneHandler(c, notesService)
			})

			// Checklist item lifecycle
			notes.POST("/:id/items", func(c *gin.Context) {
				handler.AddChecklistItemHandler(c, notesService)
			})
			notes.DELETE("/:id/items/:itemId", func(c *gin.Context) {
				handler.RemoveChecklistItemHandler(c, notesService)
			})
			notes.POST("/:id/items/:itemId/toggle", func(c *gin.Context) {
				handler.ToggleChecklistItemHandler(c, notesService)
			})

			// Tag association
			notes.DELETE("/:id/tags/:tagId", func(c *gin.Context) {
				handler.RemoveTagFromNoteHandler(c, notesService)
			})
		}

		tags := protected.Group("/tags")
		{
			tags.GET("/", func(c *gin.Context) {
				handler.GetUserTagsHandler(c, tagsService)
			})
			tags.POST("/", func(c *gin.Context) {
				handler.CreateTagHandler(c, tagsService)
			})
			tags.GET("/suggestions", func(c *gin.Context) {
				handler.GetTagSuggestionsHandler(c, tagsService)
			})
			tags.GET("/:id", func(c *gin.Context) {
				handler.GetTagHandler(c, tagsService)
			})
		}
	}

	return router
}

func main() {
	ctx := context.Background()

	client, err := utils.NewMongoClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		log.Fatalf("Failed to set up indexes: %v", err)
	}

	// The tag cache is optional infrastructure: without redis the tag
	// store still coalesces concurrent reads.
	var tagCache repository.TagCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err := services.NewTagCache(redisURL)
		if err != nil {
			log.Printf("Tag cache disabled: %v", err)
		} else {
			defer cache.Close()
			tagCache = cache
		}
	}

	repos := repository.NewRepositories(client, tagCache)
	router := setupRouter(client, repos)

	port := utils.GetEnvAsString("PORT", "8080")
	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
