//go:build integration
// +build integration

package test

import (
	"sort"
	"testing"
	"time"

	"github.com/coregx/fabrica"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// databaseMatrix names one database setup for cross-dialect tests.
type databaseMatrix struct {
	name  string
	setup func(*testing.T) *DatabaseSetup
}

// allDatabases is the standard matrix for cross-dialect workload tests.
func allDatabases() []databaseMatrix {
	return []databaseMatrix{
		{"SQLite", SetupSQLiteTestDB},
		{"PostgreSQL", SetupPostgreSQLTestDB},
		{"MySQL", SetupMySQLTestDB},
	}
}

// TestUseCase_JoinAvoidsPerRowQueries validates that a JOIN with GROUP BY
// replaces one query per parent row when counting attachments per message.
func TestUseCase_JoinAvoidsPerRowQueries(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateMessagesTable(t, ds.DB, ds.Dialect)
			CreateAttachmentsTable(t, ds.DB, ds.Dialect)

			const messageCount = 100
			const attachmentsPerMessage = 5

			InsertTestMessages(t, ds.DB, messageCount, 1)
			InsertTestAttachments(t, ds.DB, messageCount, attachmentsPerMessage)

			// Per-row approach: one query for messages, one per message
			// for its attachments.
			start := time.Now()
			queryCount := 0

			messages := fabrica.SelectAs(ds.DB.Builder().
				From("messages").
				WhereInteger("mailbox_id", 1).
				OrderBy("id"),
				messageFromRow)
			require.Len(t, messages, messageCount)
			queryCount++

			for i := range messages {
				attachments := fabrica.SelectAs(ds.DB.Builder().
					From("attachments").
					WhereInteger("message_id", messages[i].ID),
					attachmentFromRow)
				queryCount++
				messages[i].Attachments = attachments
			}

			perRowTime := time.Since(start)
			perRowQueries := queryCount

			t.Logf("[%s] per-row approach: %v, %d queries", dbConfig.name, perRowTime, perRowQueries)

			// JOIN approach: one query.
			start = time.Now()
			results := fabrica.SelectAs(ds.DB.Builder().
				Returns(
					"messages.id",
					"messages.mailbox_id",
					"messages.user_id",
					"messages.uid",
					"messages.status",
					"messages.size",
					"messages.subject",
					"COUNT(attachments.id) AS attachment_count",
				).
				From("messages").
				LeftJoin("attachments ON messages.id = attachments.message_id").
				WhereInteger("messages.mailbox_id", 1).
				GroupBy("messages.id").
				OrderBy("messages.id"),
				messageWithStatsFromRow)

			joinTime := time.Since(start)

			t.Logf("[%s] JOIN approach: %v, 1 query", dbConfig.name, joinTime)

			assert.Equal(t, messageCount+1, perRowQueries)
			assert.Len(t, results, messageCount)

			for i, result := range results {
				assert.EqualValues(t, attachmentsPerMessage, result.AttachmentCount,
					"message %d should have %d attachments", i+1, attachmentsPerMessage)
				assert.EqualValues(t, 1, result.MailboxID)
			}

			// Same attachment data both ways.
			for i := range messages {
				assert.Len(t, messages[i].Attachments, attachmentsPerMessage)
			}
		})
	}
}

// TestUseCase_PaginationReducesFetch validates that database-side
// ORDER BY + LIMIT replaces fetching the whole table and slicing in Go.
func TestUseCase_PaginationReducesFetch(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateMessagesTable(t, ds.DB, ds.Dialect)

			const totalMessages = 2000
			const pageSize = 50

			InsertTestMessages(t, ds.DB, totalMessages, 1)

			// Fetch everything, sort in Go, slice the first page.
			start := time.Now()
			allMessages := fabrica.SelectAs(ds.DB.Builder().
				From("messages").
				WhereInteger("mailbox_id", 1),
				messageFromRow)
			require.Len(t, allMessages, totalMessages)

			sort.Slice(allMessages, func(i, j int) bool {
				return allMessages[i].UID > allMessages[j].UID
			})
			firstPageInGo := allMessages[:pageSize]

			fetchAllTime := time.Since(start)

			t.Logf("[%s] fetch-all: %v, %d rows fetched", dbConfig.name, fetchAllTime, len(allMessages))

			// Database-side pagination.
			start = time.Now()
			page := fabrica.SelectAs(ds.DB.Builder().
				From("messages").
				WhereInteger("mailbox_id", 1).
				OrderBy("uid DESC").
				Limit(pageSize),
				messageFromRow)

			paginatedTime := time.Since(start)

			t.Logf("[%s] LIMIT %d: %v, %d rows fetched", dbConfig.name, pageSize, paginatedTime, len(page))

			require.Len(t, page, pageSize)
			fetchReduction := float64(len(allMessages)) / float64(len(page))
			assert.GreaterOrEqual(t, fetchReduction, float64(totalMessages/pageSize))

			// Both approaches agree on the page content.
			for i := 0; i < pageSize; i++ {
				assert.Equal(t, firstPageInGo[i].UID, page[i].UID, "row %d UID should match", i)
			}

			// Second page does not overlap the first.
			page2 := fabrica.SelectAs(ds.DB.Builder().
				From("messages").
				WhereInteger("mailbox_id", 1).
				OrderBy("uid DESC").
				Limit(pageSize, pageSize),
				messageFromRow)
			require.Len(t, page2, pageSize)
			assert.Less(t, page2[0].UID, page[pageSize-1].UID)
		})
	}
}

// TestUseCase_CountWithoutFetching validates COUNT against fetching all rows
// and counting in Go, and that both statements share one builder's WHERE.
func TestUseCase_CountWithoutFetching(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateMessagesTable(t, ds.DB, ds.Dialect)

			const totalMessages = 500
			InsertTestMessages(t, ds.DB, totalMessages, 1)
			InsertTestMessages(t, ds.DB, 100, 2)

			// One builder renders both the SELECT and the COUNT.
			builder := ds.DB.Builder().From("messages").WhereInteger("mailbox_id", 1)

			rows := builder.SelectRows()
			require.Len(t, rows, totalMessages)

			count, ok := builder.Count()
			require.True(t, ok)
			assert.EqualValues(t, totalMessages, count)
			assert.EqualValues(t, len(rows), count)

			// COUNT(DISTINCT col) via DistinctOn.
			distinctUsers, ok := ds.DB.Builder().
				From("messages").
				WhereInteger("mailbox_id", 1).
				DistinctOn("user_id").
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 100, distinctUsers, "messages are spread across 100 users")
		})
	}
}

// TestUseCase_MailboxStatistics validates GROUP BY with aggregates for
// per-mailbox message counts and sizes.
func TestUseCase_MailboxStatistics(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateMessagesTable(t, ds.DB, ds.Dialect)

			InsertTestMessages(t, ds.DB, 100, 1)
			InsertTestMessages(t, ds.DB, 200, 2)
			InsertTestMessages(t, ds.DB, 50, 3)

			rows := ds.DB.Builder().
				Returns(
					"mailbox_id",
					"COUNT(*) AS message_count",
					"SUM(size) AS total_size",
					"AVG(size) AS avg_size",
				).
				From("messages").
				GroupBy("mailbox_id").
				OrderBy("mailbox_id ASC").
				SelectRows()

			require.Len(t, rows, 3)

			assert.EqualValues(t, 1, rows[0].Int("mailbox_id"))
			assert.EqualValues(t, 100, rows[0].Int("message_count"))
			assert.Greater(t, rows[0].Int("total_size"), int64(0))
			assert.Greater(t, rows[0].Float("avg_size"), float64(0))

			assert.EqualValues(t, 2, rows[1].Int("mailbox_id"))
			assert.EqualValues(t, 200, rows[1].Int("message_count"))

			assert.EqualValues(t, 3, rows[2].Int("mailbox_id"))
			assert.EqualValues(t, 50, rows[2].Int("message_count"))

			t.Logf("[%s] mailbox statistics: %d groups", dbConfig.name, len(rows))
		})
	}
}

// TestUseCase_MultiFieldSearch validates the OR-grouped multi-field
// conditions: one bound value searched across several columns.
func TestUseCase_MultiFieldSearch(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 50)

			// Exact match against name OR email with a single parameter.
			byName := fabrica.SelectAs(ds.DB.Builder().
				From("users").
				WhereString([]string{"name", "email"}, "User3"),
				userFromRow)
			require.Len(t, byName, 1)
			assert.Equal(t, "User3", byName[0].Name)

			byEmail := fabrica.SelectAs(ds.DB.Builder().
				From("users").
				WhereString([]string{"name", "email"}, "user7@example.com"),
				userFromRow)
			require.Len(t, byEmail, 1)
			assert.Equal(t, "User7", byEmail[0].Name)

			// Substring search across both columns.
			matches := fabrica.SelectAs(ds.DB.Builder().
				From("users").
				WhereLike([]string{"name", "email"}, "33").
				OrderBy("id"),
				userFromRow)
			require.Len(t, matches, 1)
			assert.Equal(t, "User33", matches[0].Name)

			// The multi-field group must AND correctly with further
			// conditions: "33" matches User33 whose age is 53.
			narrowed, ok := ds.DB.Builder().
				From("users").
				WhereLike([]string{"name", "email"}, "33").
				WhereInteger("age", 53).
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 1, narrowed)

			// An ungrouped COUNT over zero matches still returns one row.
			none, ok := ds.DB.Builder().
				From("users").
				WhereLike([]string{"name", "email"}, "33").
				WhereInteger("age", 99).
				Count()
			require.True(t, ok)
			assert.Zero(t, none)
		})
	}
}

// TestUseCase_RangeAndMembershipFilters validates the typed range and IN
// conditions against live databases.
func TestUseCase_RangeAndMembershipFilters(t *testing.T) {
	for _, dbConfig := range allDatabases() {
		t.Run(dbConfig.name, func(t *testing.T) {
			ds := dbConfig.setup(t)
			defer ds.Close()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 50)

			// Ages are 20 + (i % 50): users 10..20 fall in [30, 40].
			inRange, ok := ds.DB.Builder().
				From("users").
				WhereIntegerInRange("age", 30, 40).
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 11, inRange)

			// Open-ended range: only the lower bound.
			seniors, ok := ds.DB.Builder().
				From("users").
				WhereIntegerInRange("age", 60, nil).
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 10, seniors, "users 40..49 have ages 60..69")

			// Decimal range on the balance column (10.5 per user ID).
			balanced := fabrica.SelectAs(ds.DB.Builder().
				From("users").
				WhereDecimalInRange("balance", 100, 150).
				OrderBy("id"),
				userFromRow)
			// Balances 105.00 through 147.00 (users 10..14).
			require.Len(t, balanced, 5)
			assert.EqualValues(t, 10, balanced[0].ID)
			assert.EqualValues(t, 14, balanced[4].ID)

			// Membership.
			chosen := fabrica.SelectAs(ds.DB.Builder().
				From("users").
				WhereIn("id", 3, 7, 11).
				OrderBy("id"),
				userFromRow)
			require.Len(t, chosen, 3)
			assert.EqualValues(t, 3, chosen[0].ID)
			assert.EqualValues(t, 11, chosen[2].ID)

			// Boolean literal conditions; odd IDs are active.
			activeCount, ok := ds.DB.Builder().
				From("users").
				WhereTrue("active").
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 25, activeCount)

			inactiveCount, ok := ds.DB.Builder().
				From("users").
				WhereFalse("active").
				Count()
			require.True(t, ok)
			assert.EqualValues(t, 25, inactiveCount)
		})
	}
}
