package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/media"
)

// parsePage reads ?page= and ?page_size=. Out-of-range values fall back to
// the service defaults, which also clamp the size.
func parsePage(c echo.Context) domain.Page {
	var page domain.Page
	if v := strings.TrimSpace(c.QueryParam("page")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page.Number = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("page_size")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page.Size = parsed
		}
	}
	return page
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0", "no", "off":
		return false, nil
	case "true", "1", "yes", "on":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), echo.MIMEMultipartForm)
}

// formValue distinguishes an absent field from an empty one.
func formValue(form url.Values, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formBool(form url.Values, key string) (*bool, error) {
	raw := formValue(form, key)
	if raw == nil {
		return nil, nil
	}
	v, err := parseBool(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &v, nil
}

// formUpload opens an optional multipart file. The returned closer is nil
// when the field is absent.
func formUpload(c echo.Context, field string) (*media.Upload, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("unable to read %s", field)
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read %s", field)
	}
	return &media.Upload{
		Reader:      file,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
	}, file, nil
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
