package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDBName     = "testdb"
	testDBUser     = "testuser"
	testDBPassword = "testpass"
)

var (
	testDBOnce    sync.Once
	testDBHost    string
	testDBPort    string
	testDBErr     error
	testContainer *pgcontainer.PostgresContainer
)

// getSharedPostgres returns the host and port of a PostgreSQL container shared
// by all E2E tests.
func getSharedPostgres(t *testing.T) (host, port string) {
	t.Helper()

	testDBOnce.Do(func() {
		ctx := context.Background()

		testContainer, testDBErr = pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase(testDBName),
			pgcontainer.WithUsername(testDBUser),
			pgcontainer.WithPassword(testDBPassword),
			pgcontainer.BasicWaitStrategies(),
		)
		if testDBErr != nil {
			return
		}

		testDBHost, testDBErr = testContainer.Host(ctx)
		if testDBErr != nil {
			return
		}

		mapped, err := testContainer.MappedPort(ctx, "5432/tcp")
		if err != nil {
			testDBErr = err
			return
		}
		testDBPort = mapped.Port()
	})

	if testDBErr != nil {
		t.Fatalf("failed to start postgres container: %v", testDBErr)
	}
	return testDBHost, testDBPort
}

func terminatePostgres() {
	if testContainer == nil {
		return
	}
	_ = testcontainers.TerminateContainer(testContainer)
}
