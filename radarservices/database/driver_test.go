package database_test

import (
	"context"
	"slices"
	"testing"

	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarservices/database"
	"gotest.tools/v3/assert"
)

const createUsers = `
	CREATE TABLE users (
		id INTEGER,
		name VARCHAR(255),
		age INTEGER,
		settings TEXT
	)
`

// testSuite runs the same end to end checks against every database.
func testSuite(t *testing.T, driver database.Driver) {
	t.Helper()
	t.Cleanup(func() {
		assert.NilError(t, driver.Close())
	})

	ctx := t.Context()
	connectionString := driver.ConnectionString()

	newBuilder := func() *radar.Builder {
		builder, err := radar.New(driver, radar.WithConnectionString(connectionString))
		assert.NilError(t, err)

		return builder
	}

	names := func(rows radar.Rows) []string {
		result := []string{}
		for _, row := range rows {
			result = append(result, row["name"].(string))
		}

		return result
	}

	{ // Confirm raw statements run on a connection
		connection, err := driver.Connect(ctx, connectionString)
		assert.NilError(t, err)

		_, err = driver.Run(ctx, connection, radar.Statement{Query: createUsers})
		assert.NilError(t, err)
		assert.NilError(t, driver.Release(ctx, connection))
	}

	{ // Confirm inserting rows
		for _, user := range []map[string]any{
			{"id": 1, "name": "Aaron", "age": 34, "settings": map[string]any{"color": "blue"}},
			{"id": 2, "name": "Andy", "age": 17},
			{"id": 3, "name": "Ada", "age": 65},
		} {
			_, err := newBuilder().Into("users").Insert(user).Execute(ctx)
			assert.NilError(t, err)
		}
	}

	{ // Confirm selecting everything
		rows, err := newBuilder().Select("*").From("users").Execute(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 3, len(rows))
	}

	{ // Confirm where equality and selected columns
		rows, err := newBuilder().Select("id", "name").From("users").Where(map[string]any{"name": "Aaron"}).Execute(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 1, len(rows))
		assert.Equal(t, 2, len(rows[0]))
		assert.Equal(t, "Aaron", rows[0]["name"])
	}

	{ // Confirm nested values were stored as JSON
		rows, err := newBuilder().Select("settings").From("users").Where(map[string]any{"id": 1}).Execute(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 1, len(rows))
		assert.Equal(t, `{"color":"blue"}`, rows[0]["settings"])
	}

	{ // Confirm null checks
		rows, err := newBuilder().Select("name").From("users").Where(map[string]any{"settings": nil}).Execute(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"Ada", "Andy"}, slices.Sorted(slices.Values(names(rows))))
	}

	{ // Confirm operator maps merged across calls
		rows, err := newBuilder().
			Select("name").
			From("users").
			Where(map[string]any{"age": map[string]any{">=": 18}}).
			Where(map[string]any{"age": map[string]any{"<": 65}}).
			Execute(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"Aaron"}, names(rows))
	}

	{ // Confirm lists
		rows, err := newBuilder().Select("name").From("users").Where(map[string]any{"id": []int{1, 3}}).Execute(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"Aaron", "Ada"}, slices.Sorted(slices.Values(names(rows))))

		rows, err = newBuilder().Select("name").From("users").Where(map[string]any{"id": map[string]any{"not in": []int{1, 3}}}).Execute(ctx)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"Andy"}, names(rows))
	}

	{ // Confirm like and limit
		rows, err := newBuilder().Select("name").From("users").Where(map[string]any{"name": map[string]any{"LIKE": "A%"}}).Limit(2).Execute(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 2, len(rows))
	}

	countUsers := func() int {
		rows, err := newBuilder().Select("id").From("users").Execute(ctx)
		assert.NilError(t, err)

		return len(rows)
	}

	{ // Confirm rollback discards writes
		transaction, err := radar.Begin(ctx, driver, connectionString)
		assert.NilError(t, err)

		_, err = transaction.Builder().Into("users").Insert(map[string]any{"id": 4, "name": "Alan"}).Execute(ctx)
		assert.NilError(t, err)

		rows, err := transaction.Builder().Select("id").From("users").Execute(ctx)
		assert.NilError(t, err)
		assert.Equal(t, 4, len(rows))

		assert.NilError(t, transaction.Rollback(ctx))
		assert.Equal(t, 3, countUsers())
	}

	{ // Confirm commit keeps writes
		err := radar.WithTransaction(ctx, driver, connectionString, func(ctx context.Context, transaction *radar.Transaction) error {
			_, err := transaction.Builder().Into("users").Insert(map[string]any{"id": 5, "name": "Grace"}).Execute(ctx)

			return err
		})
		assert.NilError(t, err)
		assert.Equal(t, 4, countUsers())
	}

	{ // Confirm a failing statement surfaces the database error
		_, err := newBuilder().From("missing_table").Execute(ctx)
		assert.Assert(t, err != nil)
	}
}
