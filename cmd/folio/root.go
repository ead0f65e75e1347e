package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "folio",
		Short:         "folio - a personal site content store with blog, music and profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}
	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("env_file", root.PersistentFlags().Lookup("env-file"))

	root.AddCommand(newServeCmd(v), newHashPasswordCmd(), newVersionCmd())
	return root
}

// loadConfig layers the dotenv file, the environment and an optional config
// file into v. Real environment variables win over the dotenv file.
func loadConfig(v *viper.Viper) error {
	if envFile := v.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site_name", "Folio")
	v.SetDefault("site_url", "http://localhost:3000")
	v.SetDefault("addr", ":3000")
	v.SetDefault("content_dir", "content")
	v.SetDefault("public_dir", "public")
	v.SetDefault("token_ttl", "12h")
	v.SetDefault("post_cache_ttl", "5m")
	v.SetDefault("max_upload_bytes", 50<<20)
	v.SetDefault("max_image_width", 1600)
	v.SetDefault("write_rate_limit", 5)
	v.SetDefault("write_rate_burst", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)
}

func siteConfig(v *viper.Viper) folio.SiteConfig {
	return folio.SiteConfig{
		Name:              v.GetString("site_name"),
		URL:               v.GetString("site_url"),
		Description:       v.GetString("site_description"),
		Author:            v.GetString("site_author"),
		Addr:              v.GetString("addr"),
		ContentDir:        v.GetString("content_dir"),
		PublicDir:         v.GetString("public_dir"),
		PostsDir:          v.GetString("posts_dir"),
		MusicDataFile:     v.GetString("music_data_file"),
		ProfileDataFile:   v.GetString("profile_data_file"),
		MusicDir:          v.GetString("music_dir"),
		UploadsDir:        v.GetString("uploads_dir"),
		AdminPassword:     v.GetString("admin_password"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
		AdminToken:        v.GetString("admin_token"),
		SessionSecret:     v.GetString("session_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		CookieSecure:      v.GetBool("cookie_secure"),
		PostCacheTTL:      v.GetDuration("post_cache_ttl"),
		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		MaxImageWidth:     v.GetInt("max_image_width"),
		WriteRateLimit:    v.GetFloat64("write_rate_limit"),
		WriteRateBurst:    v.GetInt("write_rate_burst"),
		MetricsEnabled:    v.GetBool("metrics_enabled"),
		WatchPosts:        v.GetBool("watch_posts"),
	}
}

func logConfig(v *viper.Viper) logger.Config {
	return logger.Config{
		Level:      v.GetString("log_level"),
		OutputPath: v.GetString("log_file"),
		MaxSizeMB:  v.GetInt("log_max_size_mb"),
		MaxBackups: v.GetInt("log_max_backups"),
		MaxAgeDays: v.GetInt("log_max_age_days"),
		Compress:   v.GetBool("log_compress"),
	}
}
