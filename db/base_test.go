// Package db
package db

import (
	"fmt"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/zap"
	"gotest.tools/assert"
)

// setupTestMgo hands back a client on a flushed governance_test database.
// TEST_MONGO_URI takes priority; without it a throwaway mongo container is
// booted, and the test is skipped when no docker daemon answers.
func setupTestMgo(t *testing.T) *mongoDB {
	t.Helper()
	lgr, err := zap.NewDevelopment()
	assert.NilError(t, err)

	url := os.Getenv("TEST_MONGO_URI")
	if url == "" {
		url = runTestMongo(t)
	}
	mgo, err := newMongoDB(Config{
		DbAdapter: MGO,
		DbName:    "governance_test",
		URL:       url,
		MinConn:   1,
		MaxConn:   4,
		FlushDB:   true,
		Logger:    lgr,
	})
	assert.NilError(t, err)
	return mgo
}

func runTestMongo(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "4.2",
	}, func(config *docker.HostConfig) {
		// stopped containers go away by themselves
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("cannot start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("cannot purge mongo container: %v", err)
		}
	})
	assert.NilError(t, res.Expire(180))

	url := fmt.Sprintf("mongodb://localhost:%s", res.GetPort("27017/tcp"))
	// the container may not accept connections right away
	err = pool.Retry(func() error {
		probe, err := newMongoDB(Config{
			DbAdapter: MGO,
			DbName:    "governance_test",
			URL:       url,
			MinConn:   1,
			MaxConn:   2,
			Logger:    zap.NewNop(),
		})
		if err != nil {
			return err
		}
		return probe.ping()
	})
	assert.NilError(t, err)
	return url
}
