package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/folio-cli/internal/config"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/KaramelBytes/folio-cli/internal/storage"
	"github.com/redis/go-redis/v9"
)

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, errors.New("configuration could not be loaded (see warning above)")
	}
	return cfg, nil
}

// openSlot builds the configured storage slot. The returned func releases
// any connection it opened.
func openSlot(c *cfgpkg.Global) (storage.Slot, func(), error) {
	switch c.StorageBackend {
	case cfgpkg.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		return storage.NewRedisSlot(client, c.RedisKey), func() { _ = client.Close() }, nil
	case cfgpkg.BackendFile, "":
		return storage.NewFileSlot(c.StorePath), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
}

// openRepository loads the project collection from the configured store.
func openRepository(ctx context.Context) (*project.Repository, func(), error) {
	c, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}
	slot, closeFn, err := openSlot(c)
	if err != nil {
		return nil, nil, err
	}
	repo, err := project.Open(ctx, storage.NewJSONStore(slot, log.WithField("backend", c.StorageBackend)))
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("open project store: %w", err)
	}
	return repo, closeFn, nil
}

func newPublisher(c *cfgpkg.Global) *publish.Publisher {
	return publish.New(c.GitHubAPIURL, time.Duration(c.HTTPTimeoutSec)*time.Second, log)
}

// resolveToken prefers an explicit flag, then config, then $GITHUB_TOKEN.
func resolveToken(flag string, c *cfgpkg.Global) string {
	if flag != "" {
		return flag
	}
	if c.GitHubToken != "" {
		return c.GitHubToken
	}
	return os.Getenv("GITHUB_TOKEN")
}
