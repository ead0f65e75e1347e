// Package folio is the content store and HTTP layer of a personal site.
// Blog posts are markdown files, the music library and the profile are JSON
// documents, and uploaded binaries live in flat directories. The App serves
// them over a JSON API guarded by an admin gate, plus a server-rendered blog,
// RSS, sitemap and static asset routes.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/markdown"
)

const shutdownTimeout = 10 * time.Second

// App wires the content stores, caches, handlers and middleware together.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Posts   *PostStore
	Cache   *PostCache
	Music   *MusicStore
	Profile *ProfileStore
	Views   ViewFuncs

	assets       map[string]*AssetDir
	loginLimiter *LoginLimiter
	tokens       *tokenIssuer
	validator    *requestValidator
	metrics      *siteMetrics
	markdown     *markdown.Renderer
	customRoutes []func(*App)
	now          func() time.Time

	ready     bool
	closeOnce sync.Once
}

// New creates an App with the given configuration. Call Setup (or Run) before
// serving requests.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup validates the configuration and builds stores, middleware and routes.
// It is idempotent.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	if a.Config.AdminPassword == "" && a.Config.AdminPasswordHash == "" && a.Config.AdminToken == "" {
		return fmt.Errorf("folio: one of AdminPassword, AdminPasswordHash or AdminToken is required")
	}
	if a.Config.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(a.Config.AdminPasswordHash)); err != nil {
			return fmt.Errorf("folio: AdminPasswordHash: %w", err)
		}
	}

	music := newMusicDir(a.Config.MusicDir, a.Config.MaxUploadBytes)
	uploads := newUploadsDir(a.Config.UploadsDir, a.Config.MaxUploadBytes, a.Config.MaxImageWidth)
	a.assets = map[string]*AssetDir{
		music.Kind:   music,
		uploads.Kind: uploads,
	}

	a.Posts = NewPostStore(a.Config.PostsDir)
	a.Cache = NewPostCache(a.Posts, a.Config.PostCacheTTL)
	a.Music = NewMusicStore(a.Config.MusicDataFile, music, uploads, a.now)
	a.Profile = NewProfileStore(a.Config.ProfileDataFile, uploads, a.now)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.tokens = newTokenIssuer(a.Config.SessionSecret, "folio", a.Config.TokenTTL)
	a.validator = newRequestValidator()
	a.metrics = newSiteMetrics()
	a.markdown = markdown.New(markdown.WithURLRewriter(StaticURL), markdown.WithHeadingIDs())
	a.Views.fill(a.defaultViews())

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.Echo.Validator = a.validator
	a.Echo.Server.ReadHeaderTimeout = 10 * time.Second

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", handleHealth)
	if a.Config.MetricsEnabled {
		e.GET("/metrics", a.metrics.handler())
	}
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", handleHomeRedirect)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/:slug/", a.handlePost)

	api := e.Group("/api")

	api.POST("/auth/login", a.handleLogin, middleware.BodyLimit("16K"))
	api.POST("/auth/logout", a.handleLogout)
	api.GET("/auth/session", a.handleSession)

	write := a.writeMiddleware()

	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:slug", a.handleGetPost)
	api.POST("/posts", a.handleCreatePost, write...)
	api.DELETE("/posts", a.handleDeletePost, write...)

	api.GET("/music", a.handleListMusic)
	api.POST("/music", a.handleUploadMusic, write...)
	api.DELETE("/music", a.handleDeleteMusic, write...)

	api.GET("/profile", a.handleGetProfile)
	api.POST("/profile", a.handleUpdateProfile, write...)

	api.POST("/upload", a.handleUpload, write...)

	api.GET("/static/:category/:filename", a.handleStatic)
	api.HEAD("/static/:category/:filename", a.handleStatic)
}

// Run serves until ctx is done or the server fails, then shuts down
// gracefully and releases the App's resources.
func (a *App) Run(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if a.Config.WatchPosts {
		w, err := a.newPostWatcher()
		if err != nil {
			return fmt.Errorf("folio: %w", err)
		}
		g.Go(func() error {
			return a.runPostWatcher(ctx, w)
		})
	}

	g.Go(func() error {
		defer stop()
		logger.Info("server listening", logger.String("addr", a.Config.Addr), logger.String("url", a.Config.URL))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Start runs the server until it fails. Prefer Run for graceful shutdown.
func (a *App) Start() error {
	return a.Run(context.Background())
}

// Close stops the write queues and background sweeps. Call it when the App
// is no longer serving.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		if a.Posts != nil {
			a.Posts.Close()
		}
		if a.Music != nil {
			a.Music.Close()
		}
		if a.Profile != nil {
			a.Profile.Close()
		}
		if a.loginLimiter != nil {
			a.loginLimiter.Stop()
		}
	})
	return nil
}
