package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/logger"
)

// apiError carries the body a route answers with when err maps to a 500.
type apiError struct {
	err  error
	body echo.Map
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

func failWith(err error, body echo.Map) error {
	return &apiError{err: err, body: body}
}

// statusFor maps content errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrPathTraversal),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrMissingParameter),
		errors.Is(err, ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		return "Invalid identifier"
	case errors.Is(err, ErrPathTraversal):
		return "Invalid path"
	case errors.Is(err, ErrMissingFile):
		return "Missing file"
	case errors.Is(err, ErrMissingParameter):
		return "Missing parameter"
	case errors.Is(err, ErrInvalidField):
		// built from field names and validation tags only
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "Not found"
	}
	return http.StatusText(http.StatusInternalServerError)
}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return failWith(err, echo.Map{"message": "Error fetching posts"})
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return failWith(err, echo.Map{"message": "Error fetching post"})
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCreatePost(c echo.Context) error {
	fail := echo.Map{"message": "Error creating post"}
	post, err := a.bindPost(c)
	if err != nil {
		return failWith(err, fail)
	}
	if err := a.Posts.Create(c.Request().Context(), post); err != nil {
		return failWith(err, fail)
	}
	a.Cache.Invalidate()
	a.metrics.write("posts", "create")
	logger.Info("post saved", logger.String("slug", post.Slug))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created successfully", "slug": post.Slug})
}

func (a *App) handleDeletePost(c echo.Context) error {
	slug := c.QueryParam("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Slug is required"})
	}
	if err := a.Posts.Delete(c.Request().Context(), slug); err != nil {
		return failWith(err, echo.Map{"message": "Error deleting post"})
	}
	a.Cache.Invalidate()
	a.metrics.write("posts", "delete")
	logger.Info("post deleted", logger.String("slug", slug))
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

func (a *App) handleListMusic(c echo.Context) error {
	tracks, err := a.Music.List()
	if err != nil {
		return failWith(err, echo.Map{"message": "Error fetching tracks"})
	}
	return c.JSON(http.StatusOK, tracks)
}

func (a *App) handleUploadMusic(c echo.Context) error {
	fail := echo.Map{"message": "Error uploading file"}
	in, closer, err := a.bindMusicUpload(c)
	defer closer.Close()
	if errors.Is(err, ErrMissingFile) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No music file received."})
	}
	if err != nil {
		return failWith(err, fail)
	}
	track, err := a.Music.Upload(c.Request().Context(), in)
	if errors.Is(err, ErrMissingFile) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No music file received."})
	}
	if err != nil {
		return failWith(err, fail)
	}
	a.metrics.upload("music", in.Audio.Size)
	if track.CoverImage != "" {
		a.metrics.upload("uploads", in.Cover.Size)
	}
	a.metrics.write("music", "upload")
	logger.Info("track uploaded", logger.String("filename", track.Filename))
	return c.JSON(http.StatusCreated, echo.Map{"Message": "Success", "status": http.StatusCreated, "data": track})
}

func (a *App) handleDeleteMusic(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Filename is required"})
	}
	if err := a.Music.Delete(c.Request().Context(), filename); err != nil {
		return failWith(err, echo.Map{"message": "Error deleting track"})
	}
	a.metrics.write("music", "delete")
	logger.Info("track deleted", logger.String("filename", filename))
	return c.JSON(http.StatusOK, echo.Map{"message": "Track deleted successfully"})
}

// handleGetProfile never fails; an unreadable document is logged and the
// default profile is served in its place.
func (a *App) handleGetProfile(c echo.Context) error {
	profile, err := a.Profile.Get()
	if err != nil {
		logger.Error("read profile", logger.ErrorField(err))
	}
	return c.JSON(http.StatusOK, profile)
}

func (a *App) handleUpdateProfile(c echo.Context) error {
	fail := echo.Map{"Message": "Failed", "status": http.StatusInternalServerError}
	update, closer, err := a.bindProfileUpdate(c)
	defer closer.Close()
	if err != nil {
		return failWith(err, fail)
	}
	profile, err := a.Profile.Update(c.Request().Context(), update)
	if err != nil {
		return failWith(err, fail)
	}
	if update.Avatar != nil {
		a.metrics.upload("uploads", update.Avatar.Size)
	}
	a.metrics.write("profile", "update")
	return c.JSON(http.StatusOK, echo.Map{"Message": "Success", "status": http.StatusOK, "data": profile})
}

func (a *App) handleUpload(c echo.Context) error {
	fail := echo.Map{"Message": "Failed", "status": http.StatusInternalServerError}
	blob, closer, err := formBlob(c, "file")
	defer closer.Close()
	if err != nil {
		return failWith(err, fail)
	}
	if blob == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file received."})
	}
	uploads := a.assets["uploads"]
	name, size, err := uploads.Save("", blob, a.now())
	if errors.Is(err, ErrMissingFile) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file received."})
	}
	if err != nil {
		return failWith(err, fail)
	}
	a.metrics.upload("uploads", size)
	logger.Info("file uploaded", logger.String("name", name), logger.Int64("bytes", size))
	return c.JSON(http.StatusCreated, echo.Map{"url": uploads.URL(name), "status": http.StatusCreated})
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	api := isAPIPath(c.Request().URL.Path)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch {
		case he.Code >= 500:
			logger.Error("server error", logger.ErrorField(err), logger.String("path", c.Request().URL.Path))
			if !api {
				_ = RenderStatus(c, he.Code, a.Views.ServerError())
				return
			}
		case he.Code == http.StatusNotFound && !api:
			_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
			return
		}
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	code := statusFor(err)
	if code >= 500 {
		logger.Error("server error", logger.ErrorField(err), logger.String("path", c.Request().URL.Path))
	}
	if !api {
		if code == http.StatusNotFound {
			_ = RenderStatus(c, code, a.Views.NotFound())
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}

	body := echo.Map{"message": clientMessage(err)}
	var ae *apiError
	if code >= 500 && errors.As(err, &ae) {
		body = ae.body
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
