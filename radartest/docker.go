package radartest

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/ory/dockertest"
)

type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Builder        func(host string, port int) (T, error)
}

func (config DockerServiceConfig[T]) Env() []string {
	env := []string{}
	for k, v := range config.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts a container and retries Builder against it until it
// succeeds. The container is purged when the test finishes. Skipped in short
// mode.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode.")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.Env(),
	)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	})

	host, port, err := dockerHostPort(resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort)))
	if err != nil {
		t.Fatalf("Error parsing docker address: %s", err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(host, port)

		return err
	}); err != nil {
		t.Fatalf("Could not connect to %s: %s", config.DockerImage, err)
	}

	return service
}

// dockerHostPort resolves the mapped port, swapping in the docker host name
// when the daemon is remote.
func dockerHostPort(hostPort string) (string, int, error) {
	host, portString, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return "", 0, err
	}

	if dockerURL := os.Getenv("DOCKER_HOST"); dockerURL != "" {
		u, err := url.Parse(dockerURL)
		if err != nil {
			return "", 0, err
		}

		if u.Scheme == "tcp" {
			host = u.Hostname()
		}
	}

	return host, port, nil
}
