package handler

import (
	"html/template"
	"net/http"

	"zold-node/internal/adapter/http/dto"
	"zold-node/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const robotsTxt = "User-agent: *\nDisallow: /"

const homeTemplateName = "home.html"

// homeTemplate is installed on the engine with SetHTMLTemplate.
var homeTemplate = template.Must(template.New(homeTemplateName).Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>zold node, version {{.Version}}</p>
<p>GET /wallets/{id} to pull a wallet, PUT /wallets/{id} to push one.</p>
</body>
</html>
`))

// InfoHandler serves the public face of the node.
type InfoHandler struct {
	version string
	title   string
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(version, title string) *InfoHandler {
	return &InfoHandler{version: version, title: title}
}

// Home handles GET /.
func (h *InfoHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, homeTemplateName, gin.H{
		"Title":   h.title,
		"Version": h.version,
	})
}

// Version handles GET /version.
func (h *InfoHandler) Version(c *gin.Context) {
	c.String(http.StatusOK, h.version)
}

// Robots handles GET /robots.txt.
func (h *InfoHandler) Robots(c *gin.Context) {
	c.String(http.StatusOK, robotsTxt)
}

// HealthCheck handles GET /health, pinging every storage dependency.
func HealthCheck(version string, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := make(map[string]string, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				deps[checker.Name()] = "healthy"
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, dto.HealthResponse{
			Status:       status,
			Version:      version,
			Dependencies: deps,
		})
	}
}
