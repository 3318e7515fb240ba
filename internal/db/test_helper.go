package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// TestDatabaseURLEnv names the database integration tests run against
const TestDatabaseURLEnv = "EDUSTOCKS_TEST_DATABASE_URL"

// SetupTestStore opens the integration database, skipping the test when
// none is configured.
func SetupTestStore(t *testing.T, startingBalance float64) *PostgresStore {
	t.Helper()
	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := OpenPostgres(ctx, url, startingBalance, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// CleanupTestUsers deletes the given users and everything they own
func CleanupTestUsers(t *testing.T, store *PostgresStore, userIDs ...string) {
	t.Helper()
	_, err := store.DB().Exec("DELETE FROM users WHERE id = ANY($1)", pq.Array(userIDs))
	if err != nil {
		t.Logf("Warning: failed to clean up test users: %v", err)
	}
}

// CreateTestUser creates a uniquely named user with balance and registers
// its cleanup.
func CreateTestUser(t *testing.T, store *PostgresStore, name string, balance float64) string {
	t.Helper()
	userID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())

	_, err := store.DB().Exec(
		"INSERT INTO users (id, email, cash_balance) VALUES ($1, $2, $3)",
		userID, userID+"@test.com", balance,
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	t.Cleanup(func() { CleanupTestUsers(t, store, userID) })
	return userID
}
