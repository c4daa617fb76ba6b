package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"mime"
	"mime/multipart"
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048

	redacted = "redacted"
	binary   = "binary"
)

// sensitiveKeys are matched as substrings of lowercased field names.
var sensitiveKeys = []string{"password", "token", "secret"}

func registerLogging(e *echo.Echo, logger *slog.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRoutePath: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID.String()
			}

			reqAttrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("route", v.RoutePath),
				slog.String("remote_ip", v.RemoteIP),
			}
			if summary := c.Get(requestBodyLogKey); summary != nil {
				reqAttrs = append(reqAttrs, slog.Any("body", summary))
			}
			resAttrs := []any{slog.Int("status", v.Status)}
			if summary := c.Get(responseBodyLogKey); summary != nil {
				resAttrs = append(resAttrs, slog.Any("body", summary))
			}
			if v.Error != nil {
				resAttrs = append(resAttrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "http request",
				slog.String("user_uuid", userID),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.Group("request", reqAttrs...),
				slog.Group("response", resAttrs...),
			)
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
			if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
				c.Set(responseBodyLogKey, summary)
			}
		},
	}))
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveKeys {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// sanitizeBody turns a request or response body into something safe to log:
// credentials are redacted, uploads and binary payloads are summarised and
// long bodies are truncated.
func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}

	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(mediaType, echo.MIMEMultipartForm):
		return sanitizeMultipart(body, contentType)
	case strings.HasPrefix(mediaType, echo.MIMEApplicationJSON) || json.Valid(body):
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data, false))
		}
	case strings.HasPrefix(mediaType, echo.MIMEApplicationForm):
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			return limitJSONSize(sanitizeForm(values))
		}
	}

	if containsBinaryBytes(body) {
		return binary
	}
	text := string(body)
	if isSensitiveKey(text) {
		return redacted
	}
	return clampString(text)
}

func sanitizeJSON(value any, sensitive bool) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = sanitizeJSON(item, sensitive || isSensitiveKey(key))
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeJSON(item, sensitive)
		}
		return out
	case string:
		return sanitizeString(v, sensitive)
	default:
		if sensitive {
			return redacted
		}
		return v
	}
}

func sanitizeForm(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		sensitive := isSensitiveKey(key)
		for _, v := range vals {
			addFormField(out, key, sanitizeString(v, sensitive))
		}
	}
	return out
}

func sanitizeString(value string, sensitive bool) string {
	switch {
	case sensitive:
		return redacted
	case containsBinaryBytes([]byte(value)):
		return binary
	default:
		return clampString(value)
	}
}

func sanitizeMultipart(body []byte, contentType string) any {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return binary
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return binary
		}
		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() != "":
			addFormField(fields, name, binary)
		default:
			data, err := io.ReadAll(part)
			if err != nil {
				addFormField(fields, name, binary)
			} else {
				addFormField(fields, name, sanitizeString(string(data), isSensitiveKey(name)))
			}
		}
		_ = part.Close()
	}

	if len(fields) == 0 {
		return binary
	}
	return limitJSONSize(fields)
}

func addFormField(fields map[string]any, key string, value any) {
	existing, ok := fields[key]
	if !ok {
		fields[key] = value
		return
	}
	if items, isSlice := existing.([]any); isSlice {
		fields[key] = append(items, value)
		return
	}
	fields[key] = []any{existing, value}
}

func limitJSONSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	out := map[string]any{"_truncated": true}
	if preview := previewJSON(value, 0); preview != nil {
		out["_preview"] = preview
	}
	return out
}

// previewJSON keeps the first few keys and items of a large document.
func previewJSON(value any, depth int) any {
	const (
		maxDepth         = 3
		maxMapEntries    = 6
		maxArraySamples  = 3
		maxStringPreview = 256
	)
	if depth >= maxDepth {
		return "...(omitted)..."
	}

	switch v := value.(type) {
	case map[string]any:
		keys := slices.Sorted(maps.Keys(v))
		out := make(map[string]any, min(len(keys), maxMapEntries)+1)
		for i, key := range keys {
			if i == maxMapEntries {
				out["_omitted_fields"] = len(keys) - i
				break
			}
			out[key] = previewJSON(v[key], depth+1)
		}
		return out
	case []any:
		if len(v) == 0 {
			return []any{}
		}
		sample := make([]any, 0, min(len(v), maxArraySamples))
		for _, item := range v[:min(len(v), maxArraySamples)] {
			sample = append(sample, previewJSON(item, depth+1))
		}
		out := map[string]any{"_total_items": len(v), "_sample": sample}
		if len(v) > len(sample) {
			out["_omitted_items"] = len(v) - len(sample)
		}
		return out
	case string:
		return truncateUTF8(v, maxStringPreview)
	default:
		return v
	}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	return truncateUTF8(value, maxLoggedBody)
}

func truncateUTF8(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := value[:limit]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut + "...(truncated)"
}
