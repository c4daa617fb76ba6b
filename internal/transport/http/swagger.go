package http

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

// RegisterSwagger serves the OpenAPI document at specPath (docs/swagger.yaml
// in the API image) as JSON under /swagger/doc.json, and the Swagger UI under
// /swagger. The converted document is cached until the file's mtime changes.
func RegisterSwagger(e *echo.Echo, specPath string) {
	doc := &swaggerDoc{path: specPath}
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := doc.load()
		if err != nil {
			c.Logger().Errorf("load swagger spec: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

type swaggerDoc struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	json    []byte
}

func (d *swaggerDoc) load() ([]byte, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.json != nil && info.ModTime().Equal(d.modTime) {
		return d.json, nil
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	converted, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", d.path, err)
	}
	d.json, d.modTime = converted, info.ModTime()
	return d.json, nil
}
