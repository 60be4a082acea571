package handlers

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	TemplatesDir string
	StaticDir    string
}

// NewRouter mounts the page, static and API routes.
func NewRouter(jobs *JobHandler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	pages := &PageHandler{}
	if cfg.TemplatesDir != "" {
		index := filepath.Join(cfg.TemplatesDir, indexTemplate)
		if _, err := os.Stat(index); err == nil {
			r.LoadHTMLFiles(index)
			pages.HasTemplates = true
		}
	}
	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			r.Static("/static", cfg.StaticDir)
		}
	}

	r.GET("/", pages.Home)

	api := r.Group("/api")
	{
		api.GET("/health", HealthCheck)

		api.POST("/search", jobs.SearchJobs)
		api.GET("/status", jobs.Status)
		api.GET("/results", jobs.Results)
		api.GET("/searches/:id", jobs.SearchByID)
	}

	return r
}
