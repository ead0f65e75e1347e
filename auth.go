package folio

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio/logger"
)

const sessionName = "admin_session"

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.Config.TokenTTL / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// IsAdmin checks if the current session is authenticated.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// checkPassword compares against the bcrypt hash when one is configured,
// otherwise against the plain password in constant time.
func (a *App) checkPassword(pass string) bool {
	if pass == "" {
		return false
	}
	if a.Config.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(pass)) == nil
	}
	if a.Config.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1
}

// authorized accepts the admin session cookie, the static admin token or a
// token issued by handleLogin.
func (a *App) authorized(c echo.Context) bool {
	if raw := extractBearer(c.Request().Header.Get(echo.HeaderAuthorization)); raw != "" {
		if a.Config.AdminToken != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(a.Config.AdminToken)) == 1 {
			return true
		}
		return a.tokens.Verify(raw) == nil
	}
	return IsAdmin(c)
}

// requireAdmin gates mutating routes.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.authorized(c) {
			logger.Warn("unauthorized write",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Request().URL.Path),
				logger.String("ip", c.RealIP()),
			)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized: Invalid or missing token"})
		}
		return next(c)
	}
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many login attempts. Try again later."})
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request"})
	}
	if !a.checkPassword(req.Password) {
		a.loginLimiter.Record(ip)
		logger.Warn("failed admin login", logger.String("ip", ip))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid password"})
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c); err != nil {
		return err
	}
	token, exp, err := a.tokens.Issue(a.now())
	if err != nil {
		return err
	}
	logger.Info("admin login", logger.String("ip", ip))
	return c.JSON(http.StatusOK, echo.Map{
		"token":     token,
		"expiresAt": exp.UTC().Format(time.RFC3339),
	})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (a *App) handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"authenticated": a.authorized(c)})
}
