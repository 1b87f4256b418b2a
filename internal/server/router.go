package server

import (
	"time"

	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options carries the publish defaults used when a request leaves them out.
type Options struct {
	Defaults publish.Target
	Token    string
}

// NewRouter wires the JSON API over repo and pub.
func NewRouter(repo *project.Repository, pub *publish.Publisher, opts Options, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	r.GET("/health", HealthCheck)
	projects := r.Group("/projects")
	{
		projects.GET("", ListProjects(repo))
		projects.POST("", CreateProject(repo))
		projects.GET("/:id", GetProject(repo))
		projects.GET("/:id/file", DownloadFile(repo))
		projects.DELETE("/:id", DeleteProject(repo))
		projects.POST("/:id/publish", PublishProject(repo, pub, opts.Defaults, opts.Token))
	}
	return r
}

// RequestLogger logs one structured line per request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Request.Method,
			"uri":         c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request handled")
	}
}
