//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coregx/fabrica"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// DatabaseSetup encapsulates a database connection and its cleanup.
type DatabaseSetup struct {
	DB        *fabrica.DB
	Container testcontainers.Container
	Dialect   string
	DSN       string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first (allows testing without Docker)
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := fabrica.NewDB("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres", DSN: dsn}
	}

	// Start PostgreSQL in Docker via testcontainers
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := fabrica.NewDB("postgres", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: pgContainer,
		Dialect:   "postgres",
		DSN:       dsn,
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first
	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		// Ensure parseTime=true is set for time.Time support
		if !strings.Contains(dsn, "parseTime=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		db, err := fabrica.NewDB("mysql", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql", DSN: dsn}
	}

	// Start MySQL in Docker via testcontainers
	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// parseTime=true makes DATETIME/TIMESTAMP columns scan as time.Time
	// instead of []uint8.
	dsn += "?parseTime=true"

	db, err := fabrica.NewDB("mysql", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: mysqlContainer,
		Dialect:   "mysql",
		DSN:       dsn,
	}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	// modernc's :memory: databases are per connection, so the pool is
	// capped at one for every statement to see the same data.
	db, err := fabrica.Open("sqlite", ":memory:", fabrica.WithMaxOpenConns(1))
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:      db,
		Dialect: "sqlite",
		DSN:     ":memory:",
	}
}

// CreateMessagesTable creates the messages table for mail workload tests.
func CreateMessagesTable(t *testing.T, db *fabrica.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id SERIAL PRIMARY KEY,
				mailbox_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER DEFAULT 1,
				size INTEGER DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id INT AUTO_INCREMENT PRIMARY KEY,
				mailbox_id INT NOT NULL,
				user_id INT NOT NULL,
				uid INT NOT NULL,
				status INT DEFAULT 1,
				size INT DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				mailbox_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER DEFAULT 1,
				size INTEGER DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	}

	_, err := db.ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// CreateAttachmentsTable creates the attachments table.
func CreateAttachmentsTable(t *testing.T, db *fabrica.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS attachments (
				id SERIAL PRIMARY KEY,
				message_id INTEGER NOT NULL,
				filename VARCHAR(255),
				size INTEGER DEFAULT 0
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS attachments (
				id INT AUTO_INCREMENT PRIMARY KEY,
				message_id INT NOT NULL,
				filename VARCHAR(255),
				size INT DEFAULT 0
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS attachments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				message_id INTEGER NOT NULL,
				filename VARCHAR(255),
				size INTEGER DEFAULT 0
			)
		`
	}

	_, err := db.ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// CreateUsersTable creates a users table for condition and JOIN tests.
// The active column is BOOLEAN in every dialect so that the literal
// IS TRUE / IS FALSE conditions are valid on PostgreSQL too.
func CreateUsersTable(t *testing.T, db *fabrica.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				balance DECIMAL(10,2) DEFAULT 0,
				active BOOLEAN DEFAULT TRUE,
				role VARCHAR(50),
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INT,
				balance DECIMAL(10,2) DEFAULT 0,
				active BOOLEAN DEFAULT TRUE,
				role VARCHAR(50),
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				balance DECIMAL(10,2) DEFAULT 0,
				active BOOLEAN DEFAULT 1,
				role VARCHAR(50),
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	}

	_, err := db.ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// CreatePostsTable creates a posts table for multi-JOIN tests.
func CreatePostsTable(t *testing.T, db *fabrica.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS posts (
				id SERIAL PRIMARY KEY,
				user_id INTEGER NOT NULL,
				title VARCHAR(255),
				content TEXT
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS posts (
				id INT AUTO_INCREMENT PRIMARY KEY,
				user_id INT NOT NULL,
				title VARCHAR(255),
				content TEXT
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS posts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				title VARCHAR(255),
				content TEXT
			)
		`
	}

	_, err := db.ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// InsertTestMessages inserts test messages. The VALUES form works across all
// three dialects, unlike the builder's MySQL-lineage INSERT ... SET.
func InsertTestMessages(t *testing.T, db *fabrica.DB, count, mailboxID int) {
	q := db.NewQuery(`
		INSERT INTO {{messages}} ([[mailbox_id]], [[user_id]], [[uid]], [[status]], [[size]], [[subject]])
		VALUES ({:mailbox_id}, {:user_id}, {:uid}, {:status}, {:size}, {:subject})
	`)
	for i := 1; i <= count; i++ {
		_, err := q.Bind(fabrica.Params{
			"mailbox_id": mailboxID,
			"user_id":    i%100 + 1, // Distribute across 100 users
			"uid":        i,
			"status":     1,
			"size":       1024 * (i % 10), // 0KB to 9KB
			"subject":    fmt.Sprintf("Test Message %d", i),
		}).Exec()
		require.NoError(t, err)
	}
}

// InsertTestAttachments inserts test attachments for messages.
func InsertTestAttachments(t *testing.T, db *fabrica.DB, messageCount, attachmentsPerMessage int) {
	q := db.NewQuery(`
		INSERT INTO {{attachments}} ([[message_id]], [[filename]], [[size]])
		VALUES ({:message_id}, {:filename}, {:size})
	`)
	for msgID := 1; msgID <= messageCount; msgID++ {
		for i := 0; i < attachmentsPerMessage; i++ {
			_, err := q.Bind(fabrica.Params{
				"message_id": msgID,
				"filename":   fmt.Sprintf("file%d.pdf", i),
				"size":       1024 * (i + 1),
			}).Exec()
			require.NoError(t, err)
		}
	}
}

// InsertTestUsers inserts test users with deterministic ages and balances.
// Odd IDs are active, even IDs inactive.
func InsertTestUsers(t *testing.T, db *fabrica.DB, count int) {
	q := db.NewQuery(`
		INSERT INTO {{users}} ([[name]], [[email]], [[age]], [[balance]], [[active]], [[role]])
		VALUES ({:name}, {:email}, {:age}, {:balance}, {:active}, {:role})
	`)
	for i := 1; i <= count; i++ {
		_, err := q.Bind(fabrica.Params{
			"name":    fmt.Sprintf("User%d", i),
			"email":   fmt.Sprintf("user%d@example.com", i),
			"age":     20 + (i % 50), // Ages 20-69
			"balance": float64(i) * 10.5,
			"active":  i%2 == 1,
			"role":    "user",
		}).Exec()
		require.NoError(t, err)
	}
}

// InsertTestPosts inserts test posts for one user.
func InsertTestPosts(t *testing.T, db *fabrica.DB, userID, count int) {
	q := db.NewQuery(`
		INSERT INTO {{posts}} ([[user_id]], [[title]], [[content]])
		VALUES ({:user_id}, {:title}, {:content})
	`)
	for i := 1; i <= count; i++ {
		_, err := q.Bind(fabrica.Params{
			"user_id": userID,
			"title":   fmt.Sprintf("Post %d by User %d", i, userID),
			"content": fmt.Sprintf("Content of post %d", i),
		}).Exec()
		require.NoError(t, err)
	}
}
