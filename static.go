package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/logger"
)

var staticNotFound = map[string]string{
	"music":   "Music file not found",
	"uploads": "Image not found",
}

// handleStatic serves one stored asset. Names that fail sanitization are
// answered with 500, like any other failure; only a missing file is a 404.
// Range and conditional requests are handled by http.ServeContent.
func (a *App) handleStatic(c echo.Context) error {
	dir, ok := a.assets[c.Param("category")]
	if !ok {
		return c.String(http.StatusNotFound, "Not found")
	}
	name := c.Param("filename")
	f, info, err := dir.Open(name)
	if errors.Is(err, ErrNotFound) {
		return c.String(http.StatusNotFound, staticNotFound[dir.Kind])
	}
	if err != nil {
		logger.Error("serve static asset",
			logger.String("category", dir.Kind),
			logger.String("filename", name),
			logger.ErrorField(err),
		)
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	defer f.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, dir.ContentType(info.Name()))
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	if dir.Kind == "music" {
		h.Set("Accept-Ranges", "bytes")
	}
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}
