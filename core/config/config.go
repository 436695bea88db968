package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu         sync.Mutex
	cache      = make(map[reflect.Type]any)
	dotenvOnce sync.Once
)

// Load parses environment variables into cfg, which must be a non-nil
// pointer to a struct with `env` tags. Each configuration type is parsed
// once per process and served from cache afterwards, so packages can load
// their own config independently without re-reading the environment.
//
// A .env file in the working directory is applied to the environment on
// first use; a missing file is not an error.
func Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	loadDotenv()

	mu.Lock()
	defer mu.Unlock()

	typ := rv.Elem().Type()
	if cached, ok := cache[typ]; ok {
		rv.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	cache[typ] = rv.Elem().Interface()
	return nil
}

// MustLoad is Load that panics on failure. Intended for application
// startup where a missing required variable should stop the process.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}
