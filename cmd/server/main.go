package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skmtks/taskboard-api/internal/config"
	"github.com/skmtks/taskboard-api/internal/constants"
	"github.com/skmtks/taskboard-api/internal/database"
	"github.com/skmtks/taskboard-api/internal/handlers"
	"github.com/skmtks/taskboard-api/internal/logger"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/repository"
	"github.com/skmtks/taskboard-api/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Session middleware backed by Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		zlog.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	companyRepo := repository.NewCompanyRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg.AdminInviteToken)
	taskService := services.NewTaskService(taskRepo, userRepo, fileRepo, zlog)
	userService := services.NewUserService(userRepo, zlog)
	fileService := services.NewFileService(taskRepo, fileRepo, cfg.UploadDir, zlog)
	companyService := services.NewCompanyService(companyRepo)
	reportService := services.NewReportService(taskRepo, userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	fileHandler := handlers.NewFileHandler(fileService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	reportHandler := handlers.NewReportHandler(reportService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskboard API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequireAdmin(), taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireAdmin(), taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
			tasks.PUT("/:id/todos", taskHandler.UpdateChecklist)

			tasks.GET("/:id/files", fileHandler.ListFiles)
			tasks.POST("/:id/files", fileHandler.Upload)
			tasks.GET("/:id/files/:file_id", fileHandler.Download)
			tasks.PATCH("/:id/files/:file_id", fileHandler.UpdateTags)
			tasks.DELETE("/:id/files/:file_id", fileHandler.DeleteFile)
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateRole)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		company := api.Group("/company")
		company.Use(middleware.RequireAuth())
		{
			company.GET("", companyHandler.GetCompany)
			company.PUT("", middleware.RequireAdmin(), companyHandler.UpdateCompany)
		}

		reports := api.Group("/reports")
		reports.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			reports.GET("/tasks/export", reportHandler.ExportTasks)
			reports.GET("/users/export", reportHandler.ExportUsers)
		}
	}

	zlog.Info("Server starting", zap.String("addr", cfg.ServerAddr))
	if err := r.Run(cfg.ServerAddr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
