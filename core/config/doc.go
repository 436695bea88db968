// Package config provides type-safe environment variable loading with
// per-type caching. Configuration structs declare `env` tags and load
// themselves through Load or MustLoad; a .env file, when present, is
// applied to the environment on first use.
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	config.MustLoad(&cfg)
package config
