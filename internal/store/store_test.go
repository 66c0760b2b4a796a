// store_test.go provides a shared test database helper for all store
// tests. Each test gets its own migrated in-memory SQLite database.
package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"blogql/internal/database"
	"blogql/internal/models"
)

// testDB opens a private in-memory database, runs migrations and seeds the
// canonical roles. The connection is closed when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.SQLite, database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, database.SQLite))
	require.NoError(t, database.SeedRoles(context.Background(), db, database.SQLite))
	return db
}

// fixtures bundles every store over one database.
type fixtures struct {
	users      *UserStore
	roles      *RoleStore
	posts      *PostStore
	comments   *CommentStore
	categories *CategoryStore
	cacheLog   *CacheLogStore
}

func newFixtures(t *testing.T) *fixtures {
	db := testDB(t)
	return &fixtures{
		users:      NewUserStore(db, database.SQLite),
		roles:      NewRoleStore(db, database.SQLite),
		posts:      NewPostStore(db, database.SQLite),
		comments:   NewCommentStore(db, database.SQLite),
		categories: NewCategoryStore(db, database.SQLite),
		cacheLog:   NewCacheLogStore(db, database.SQLite),
	}
}

func (f *fixtures) user(t *testing.T, email string, role models.RoleName) *models.User {
	t.Helper()
	r, err := f.roles.FindByName(context.Background(), role)
	require.NoError(t, err)
	require.NotNil(t, r)

	u := &models.User{Email: email, PasswordHash: "hash", RoleID: r.ID}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixtures) post(t *testing.T, author *models.User, title, content string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: content, AuthorID: author.ID}
	require.NoError(t, f.posts.Create(context.Background(), p))
	return p
}
