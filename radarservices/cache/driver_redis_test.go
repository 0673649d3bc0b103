package cache_test

import (
	"errors"
	"testing"

	"github.com/lunagic/radar/radarservices/cache"
	"github.com/lunagic/radar/radartest"
)

func TestDriverRedis(t *testing.T) {
	t.Parallel()

	servers := map[string]struct {
		image string
		tag   string
	}{
		"redis":  {image: "redis", tag: "7"},
		"valkey": {image: "valkey/valkey", tag: "8"},
	}

	for name, server := range servers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			driver := setupRedis(t, server.image, server.tag)

			testSuite(t, driver)
			testCompileCache(t, driver)
		})
	}
}

func setupRedis(t *testing.T, image string, tag string) cache.Driver {
	return radartest.GetDockerService(
		t,
		radartest.DockerServiceConfig[cache.Driver]{
			DockerImage:    image,
			DockerImageTag: tag,
			InternalPort:   6379,
			Builder: func(host string, port int) (cache.Driver, error) {
				driver, err := cache.NewDriverRedis(cache.DriverRedisConfig{
					Host: host,
					Port: port,
				})
				if err != nil {
					return nil, err
				}

				// A miss proves the server answers
				if _, err := driver.Load(t.Context(), "radar-compile-ready"); err != nil && !errors.Is(err, cache.ErrNotFound) {
					return nil, err
				}

				return driver, nil
			},
		},
	)
}
