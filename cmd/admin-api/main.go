package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/blob"
	"github.com/noah-isme/enroll-admin-api/internal/handler"
	"github.com/noah-isme/enroll-admin-api/internal/middleware"
	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/service"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	"github.com/noah-isme/enroll-admin-api/pkg/config"
	"github.com/noah-isme/enroll-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/enroll-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/enroll-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/enroll-admin-api/pkg/storage"
)

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

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob store", "backend", cfg.Store.Backend, "error", err)
	}

	metricsSvc := service.NewMetricsService()

	store := repository.New(blobs, logr)
	store.OnPersist = func(key string, d time.Duration) {
		metricsSvc.ObservePersist(key, d)
		if key == repository.KeyEnrollments {
			metricsSvc.SetActiveEnrollments(store.Enrollments.Len())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Load(ctx); err != nil {
		logr.Sugar().Fatalw("failed to load collections", "error", err)
	}

	validate := validation.New()

	authSvc := service.NewAuthService(store, validate, logr, cfg.JWT)
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logr.Sugar().Fatalw("failed to seed admin", "error", err)
	}

	courseSvc := service.NewCourseService(store, validate, logr)
	studentSvc := service.NewStudentService(store, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(store, validate, logr)
	requestSvc := service.NewRequestService(store, validate, logr)
	statsSvc := service.NewStatsService(store, logr)

	archive, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export archive", "dir", cfg.Exports.Dir, "error", err)
	}
	exportSvc := service.NewExportService(store, enrollmentSvc, archive, cfg.Exports.ArchiveTTL, logr, nil, nil)

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
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, statsSvc, exportSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)

	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/courses", courseHandler.List)
	admin.POST("/courses", courseHandler.Create)
	admin.GET("/courses/:id", courseHandler.Get)
	admin.PUT("/courses/:id", courseHandler.Update)
	admin.DELETE("/courses/:id", courseHandler.Delete)
	admin.GET("/courses/:id/available-students", courseHandler.AvailableStudents)
	admin.GET("/courses/:id/roster.pdf", courseHandler.RosterPDF)

	admin.GET("/students", studentHandler.List)
	admin.POST("/students", studentHandler.Create)
	admin.GET("/students/:id", studentHandler.Get)
	admin.PUT("/students/:id", studentHandler.Update)
	admin.DELETE("/students/:id", studentHandler.Delete)

	admin.GET("/enrollments", enrollmentHandler.List)
	admin.POST("/enrollments", enrollmentHandler.Enroll)
	admin.DELETE("/enrollments/:id", enrollmentHandler.Unenroll)
	admin.GET("/enrollments/export.csv", enrollmentHandler.ExportCSV)

	admin.GET("/requests", requestHandler.List)
	admin.POST("/requests", requestHandler.Submit)
	admin.POST("/requests/:id/approve", requestHandler.Approve)
	admin.POST("/requests/:id/reject", requestHandler.Reject)

	admin.GET("/stats/totals", statsHandler.Totals)
	admin.GET("/stats/occupancy", statsHandler.Occupancy)

	admin.GET("/backup", exportHandler.Backup)
	admin.POST("/restore", exportHandler.Restore)

	exportSvc.CleanupArchives()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newBlobStore(cfg *config.Config) (blob.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return blob.NewMemoryStore(), nil
	case config.StoreBackendFile:
		return blob.NewFileStore(cfg.Store.Dir)
	case config.StoreBackendRedis:
		return blob.NewRedisStore(cfg.Redis)
	case config.StoreBackendPostgres:
		return blob.NewPostgresStore(cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
