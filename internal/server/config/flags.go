package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/aiinterview/internal/flagx"
)

// parseFlags overlays values from command-line flags. Unknown flags are
// filtered out beforehand so -c / -config can coexist with this set.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT signing secret")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "Redis URL for the token denylist")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json, text or zap")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "enable debug logging")
	fs.DurationVar(&config.VendorTimeout, "vendor-timeout", config.VendorTimeout, "timeout for outbound vendor calls")
	fs.Float64Var(&config.AuthRateLimit, "auth-rate-limit", config.AuthRateLimit, "requests per second per client on /api/auth")

	allowed := []string{"-a", "-d", "-k", "-r", "-log-format", "-debug", "-vendor-timeout", "-auth-rate-limit"}

	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		panic(err)
	}
}

