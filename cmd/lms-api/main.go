package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edustack/lms-api/api/swagger"
	"github.com/edustack/lms-api/internal/handler"
	"github.com/edustack/lms-api/internal/middleware"
	"github.com/edustack/lms-api/internal/repository"
	"github.com/edustack/lms-api/internal/service"
	"github.com/edustack/lms-api/pkg/cache"
	"github.com/edustack/lms-api/pkg/config"
	"github.com/edustack/lms-api/pkg/database"
	"github.com/edustack/lms-api/pkg/logger"
	corsmiddleware "github.com/edustack/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edustack/lms-api/pkg/middleware/requestid"
)

// @title EduStack LMS API
// @version 1.0.0
// @description Learning management backend: users, lecturers, courses and grades
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		logr.Sugar().Fatalw("failed to apply migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, course cache disabled", "error", err)
		redisClient = nil
	}
	if !cfg.Cache.Enabled {
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := service.NewValidator()
	tokens := service.NewTokenIssuer(cfg.JWT)
	metricsSvc := service.NewMetricsService()
	resolver := service.NewResolver(lecturerRepo, userRepo)

	userSvc := service.NewUserService(userRepo, tokens, validate, logr)
	lecturerSvc := service.NewLecturerService(lecturerRepo, courseRepo, tokens, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, userRepo, courseRepo, validate, logr)

	courseSvc := service.NewCourseService(courseRepo, lecturerRepo, resolver, cacheRepo, cfg.Cache.TTL, metricsSvc, validate, logr)

	userHandler := handler.NewUserHandler(userSvc, gradeSvc)
	lecturerHandler := handler.NewLecturerHandler(lecturerSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, gradeSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(tokens)

	api := r.Group(cfg.APIPrefix)
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", auth, userHandler.Logout)
			users.GET("", auth, userHandler.List)
			users.GET("/:id", auth, userHandler.Get)
			users.GET("/:id/grades", auth, userHandler.Grades)
			users.PUT("/:id", auth, userHandler.Update)
			users.DELETE("/:id", auth, userHandler.Delete)
		}

		lecturers := api.Group("/lecturers")
		{
			lecturers.POST("/register", lecturerHandler.Register)
			lecturers.POST("/login", lecturerHandler.Login)
			lecturers.POST("/logout", auth, lecturerHandler.Logout)
			lecturers.GET("", lecturerHandler.List)
			lecturers.GET("/:id", lecturerHandler.Get)
			lecturers.GET("/:id/courses", lecturerHandler.Courses)
			lecturers.PUT("/:id", auth, lecturerHandler.Update)
			lecturers.DELETE("/:id", auth, lecturerHandler.Delete)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.GET("/search", courseHandler.Search)
			courses.GET("/:id", courseHandler.Get)
			courses.POST("", auth, courseHandler.Create)
			courses.PUT("/:id", auth, courseHandler.Update)
			courses.DELETE("/:id", auth, courseHandler.Delete)
			courses.POST("/:id/enroll", auth, courseHandler.Enroll)
		}

		grades := api.Group("/grades", auth)
		{
			grades.POST("/assign", gradeHandler.Assign)
			grades.GET("", gradeHandler.List)
			grades.GET("/:id", gradeHandler.Get)
			grades.PUT("/:id", gradeHandler.Update)
			grades.DELETE("/:id", gradeHandler.Delete)
			grades.GET("/student/:id", gradeHandler.StudentGrades)
			grades.GET("/student/:id/export", gradeHandler.ExportTranscript)
			grades.GET("/course/:id", courseHandler.Grades)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
