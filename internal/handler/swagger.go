package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SetupSwagger serves the OpenAPI document and a Swagger UI page pointing at it.
func SetupSwagger(router *gin.Engine, spec []byte) {
	serveSpec := func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", spec)
	}
	router.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "doc.json" {
			serveSpec(c)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUIHTML))
	})
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Retail Insights Engine</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '/swagger/doc.json', dom_id: '#swagger-ui' });
  </script>
</body>
</html>`
