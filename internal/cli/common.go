package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pmorken/kinsource/internal/model"
)

// buildConfig assembles the effective configuration: defaults, then config
// file / environment via viper, then the shared CLI flags
func buildConfig(token string, timeout time.Duration, userAgent string, maxBytes int64, noCache, insecureTLS bool) *model.Config {
	cfg := model.DefaultConfig()

	if base := viper.GetString("api.base_url"); base != "" {
		cfg.API.BaseURL = base
	}
	if t := viper.GetString("api.access_token"); t != "" {
		cfg.API.AccessToken = t
	}
	if dir := viper.GetString("cache.dir"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if rps := viper.GetFloat64("rate.requests_per_second"); rps > 0 {
		cfg.Rate.RequestsPerSecond = rps
	}

	// Environment fallback for the token
	if cfg.API.AccessToken == "" {
		cfg.API.AccessToken = os.Getenv("FS_ACCESS_TOKEN")
	}

	// Flags win
	if token != "" {
		cfg.API.AccessToken = token
	}
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.API.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.Output.Verbose = verbose

	return cfg
}

// requireToken exits early with a usable message when no session is configured
func requireToken(cfg *model.Config) error {
	if cfg.API.AccessToken == "" {
		return fmt.Errorf("no access token configured (use --token, FS_ACCESS_TOKEN, or api.access_token in the config file)")
	}
	return nil
}
