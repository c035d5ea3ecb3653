// Package config reads the service configuration from environment variables.
//
// Each component owns its settings as a struct with env tags (oauth.GoogleConfig,
// db.Config, redis.Config, logger.Config); Config embeds them so a single
// env.Parse fills everything. A .env file is loaded first when present.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
package config
