package folio

import (
	"path/filepath"
	"time"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Folio")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr string // Listen address (default ":3000")

	ContentDir      string // Markdown and JSON documents (default "content")
	PublicDir       string // Uploaded binaries (default "public")
	PostsDir        string // default ContentDir/posts
	MusicDataFile   string // default ContentDir/music-data.json
	ProfileDataFile string // default ContentDir/profile.json
	MusicDir        string // default PublicDir/music
	UploadsDir      string // default PublicDir/uploads

	AdminPassword     string        // Plain admin password
	AdminPasswordHash string        // bcrypt hash, checked instead of AdminPassword when set
	AdminToken        string        // Static bearer token for scripted writes
	SessionSecret     string        // Required: session and token signing secret
	TokenTTL          time.Duration // Issued bearer token lifetime (default 12h)
	CookieSecure      bool          // Set true for HTTPS

	PostCacheTTL   time.Duration // Post cache TTL (default 5min)
	MaxUploadBytes int64         // Request body limit (default 50MB)
	MaxImageWidth  int           // Wider raster uploads are downscaled (default 1600, <0 disables)
	WriteRateLimit float64       // Write requests per second per IP (default 5)
	WriteRateBurst int           // default 20

	MetricsEnabled bool // Serve /metrics
	WatchPosts     bool // Invalidate the post cache on external edits
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.PostsDir == "" {
		c.PostsDir = filepath.Join(c.ContentDir, "posts")
	}
	if c.MusicDataFile == "" {
		c.MusicDataFile = filepath.Join(c.ContentDir, "music-data.json")
	}
	if c.ProfileDataFile == "" {
		c.ProfileDataFile = filepath.Join(c.ContentDir, "profile.json")
	}
	if c.MusicDir == "" {
		c.MusicDir = filepath.Join(c.PublicDir, "music")
	}
	if c.UploadsDir == "" {
		c.UploadsDir = filepath.Join(c.PublicDir, "uploads")
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.WriteRateLimit == 0 {
		c.WriteRateLimit = 5
	}
	if c.WriteRateBurst == 0 {
		c.WriteRateBurst = 20
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithClock replaces time.Now for upload names and default post dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithViews replaces the page components. Nil fields keep the defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
