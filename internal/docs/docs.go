// Package docs registers the OpenAPI (Swagger 2.0) document with swag and
// serves it as JSON, YAML and Swagger UI.
package docs

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Book Review API",
	Description:      "Books, reviews and favorites with role based permissions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// JSON returns the rendered document.
func JSON() []byte {
	return []byte(SwaggerInfo.ReadDoc())
}

// YAML returns the document converted to YAML.
func YAML() ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(JSON(), &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// RegisterRoutes mounts /docs under api:
//
//	/docs/              Swagger UI
//	/docs/schema/       JSON document
//	/docs/schema/json/  JSON document
//	/docs/schema/yaml/  YAML document
//	/docs/ui/*any       Swagger UI assets
func RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/docs")

	g.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, g.BasePath()+"/ui/index.html")
	})
	g.GET("/schema/", serveJSON)
	g.GET("/schema/json/", serveJSON)
	g.GET("/schema/yaml/", serveYAML)
	g.GET("/ui/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(g.BasePath()+"/schema/json/"),
		ginSwagger.InstanceName(SwaggerInfo.InstanceName()),
		ginSwagger.PersistAuthorization(true),
	))
}

func serveJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", JSON())
}

func serveYAML(c *gin.Context) {
	out, err := YAML()
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}
