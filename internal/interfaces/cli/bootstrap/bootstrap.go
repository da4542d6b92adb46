// Package bootstrap loads configuration, the process logger and the database
// for the command line entry points.
package bootstrap

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/infrastructure/config"
	"github.com/devicehub/devicehub/internal/infrastructure/database"
	"github.com/devicehub/devicehub/internal/shared/biztime"
	sharedConfig "github.com/devicehub/devicehub/internal/shared/config"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// Runtime is what every command needs before it can build a container
type Runtime struct {
	Env    string
	Config *config.Config
	Logger logger.Interface
	DB     *gorm.DB
}

// ResolveEnv lets the ENV variable override the --env flag
func ResolveEnv(flag string) string {
	if v := os.Getenv("ENV"); v != "" {
		return v
	}
	return flag
}

// GinMode maps an environment name to a gin mode
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

// Load reads the configuration and initializes the logger. The database is
// opened only when withDB is set and the driver is not the in-memory store.
func Load(env, configPath string, withDB bool) (*Runtime, error) {
	env = ResolveEnv(env)

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.SetTimezone(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to set timezone: %w", err)
	}

	rt := &Runtime{Env: env, Config: cfg, Logger: logger.NewLogger()}
	if !withDB || cfg.Database.Driver == sharedConfig.DriverMemory {
		return rt, nil
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt.DB = database.Get()
	return rt, nil
}

// Close releases the database connection opened by Load
func (r *Runtime) Close() {
	if r.DB == nil {
		return
	}
	if err := database.Close(); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}
