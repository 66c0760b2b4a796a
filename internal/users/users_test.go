package users

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blogql/internal/apperr"
	"blogql/internal/auth"
	"blogql/internal/cache"
	"blogql/internal/database"
	"blogql/internal/models"
	"blogql/internal/policy"
	"blogql/internal/store"
)

// countingUsers counts id lookups so tests can tell cache hits from
// misses.
type countingUsers struct {
	*store.UserStore
	finds atomic.Int64
}

func (c *countingUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	c.finds.Add(1)
	return c.UserStore.FindByID(ctx, id)
}

type env struct {
	svc    *Service
	tokens *auth.TokenIssuer
	users  *countingUsers
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(database.SQLite, database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, database.SQLite))
	require.NoError(t, database.SeedRoles(ctx, db, database.SQLite))

	mem, err := cache.NewMemoryStore(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	userStore := &countingUsers{UserStore: store.NewUserStore(db, database.SQLite)}
	authn, err := auth.NewAuthenticator(userStore, mem, hasher)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("test-secret", "blogql-test", time.Hour)
	require.NoError(t, err)

	return &env{
		svc:    New(userStore, store.NewRoleStore(db, database.SQLite), hasher, authn, tokens, mem, "blogql-test"),
		tokens: tokens,
		users:  userStore,
	}
}

func (e *env) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.svc.Register(context.Background(), RegisterInput{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func actorOf(u *models.User) *policy.Actor {
	return &policy.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.svc.Register(ctx, RegisterInput{Email: "  Alice@Example.com ", Password: "secret1", Name: ptr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Alice", *u.Name)

	_, err = e.svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "another1"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	for _, in := range []RegisterInput{
		{Email: "not-an-email", Password: "secret1"},
		{Email: "", Password: "secret1"},
		{Email: "Bob <bob@example.com>", Password: "secret1"},
		{Email: "bob@example.com", Password: "short"},
	} {
		_, err := e.svc.Register(ctx, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "input %+v", in)
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice@example.com")

	res, err := e.svc.Login(ctx, "alice@example.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	id, err := e.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)

	_, err = e.svc.Login(ctx, "alice@example.com", "wrong-password", "")
	assert.Equal(t, apperr.KindLoginFailed, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice@example.com")
	bob := e.register(t, "bob@example.com")

	_, err := e.svc.UpdateProfile(ctx, nil, alice.ID, ProfilePatch{Name: ptr("x")})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, err = e.svc.UpdateProfile(ctx, actorOf(bob), alice.ID, ProfilePatch{Name: ptr("Mallory")})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = e.svc.UpdateProfile(ctx, actorOf(alice), alice.ID, ProfilePatch{Email: ptr("bob@example.com")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	updated, err := e.svc.UpdateProfile(ctx, actorOf(alice), alice.ID, ProfilePatch{
		Name:     ptr("Alice A."),
		Password: ptr("new-secret"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Alice A.", *updated.Name)

	_, err = e.svc.Login(ctx, "alice@example.com", "new-secret", "")
	require.NoError(t, err)
}

func TestAdminCanEditAndDeleteOthers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice@example.com")
	admin := &policy.Actor{ID: uuid.New(), Email: "root@example.com", Role: models.RoleAdmin}

	_, err := e.svc.UpdateProfile(ctx, admin, alice.ID, ProfilePatch{Name: ptr("Renamed")})
	require.NoError(t, err)

	deleted, err := e.svc.Delete(ctx, admin, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, deleted.ID)

	_, err = e.svc.Get(ctx, alice.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	actor, err := e.svc.ActorFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, actor)
}

func TestTwoFactorEnrollment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice@example.com")
	actor := actorOf(u)

	_, err := e.svc.EnableTwoFactor(ctx, actor, "123456")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	enrollment, err := e.svc.SetupTwoFactor(ctx, actor, "")
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.URL, "otpauth://")
	assert.NotEmpty(t, enrollment.QRCode)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	enabled, err := e.svc.EnableTwoFactor(ctx, actor, code)
	require.NoError(t, err)
	assert.True(t, enabled.TOTPEnabled)

	_, err = e.svc.Login(ctx, "alice@example.com", "secret1", "")
	assert.Equal(t, apperr.KindLoginFailed, apperr.KindOf(err))

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	_, err = e.svc.Login(ctx, "alice@example.com", "secret1", code)
	require.NoError(t, err)
}

func TestTwoFactorResetNeedsCurrentCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice@example.com")
	actor := actorOf(u)

	enrollment, err := e.svc.SetupTwoFactor(ctx, actor, "")
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	_, err = e.svc.EnableTwoFactor(ctx, actor, code)
	require.NoError(t, err)

	_, err = e.svc.SetupTwoFactor(ctx, actor, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = e.svc.SetupTwoFactor(ctx, actor, "abcdef")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	still, err := e.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, still.TOTPEnabled)
	require.NotNil(t, still.TOTPSecret)
	assert.Equal(t, enrollment.Secret, *still.TOTPSecret)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	renewed, err := e.svc.SetupTwoFactor(ctx, actor, code)
	require.NoError(t, err)
	assert.NotEqual(t, enrollment.Secret, renewed.Secret)
}

func TestActorFor(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice@example.com")

	actor, err := e.svc.ActorFor(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Equal(t, u.Email, actor.Email)
	assert.Equal(t, models.RoleUser, actor.Role)
}

func TestActorForIsCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice@example.com")
	self := actorOf(u)

	before := e.users.finds.Load()
	for i := 0; i < 3; i++ {
		a, err := e.svc.ActorFor(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "alice@example.com", a.Email)
	}
	assert.Equal(t, before+1, e.users.finds.Load(), "only the first lookup should reach the database")

	_, err := e.svc.UpdateProfile(ctx, self, u.ID, ProfilePatch{Email: ptr("alice@new.example.com")})
	require.NoError(t, err)

	a, err := e.svc.ActorFor(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "alice@new.example.com", a.Email)

	_, err = e.svc.Delete(ctx, self, u.ID)
	require.NoError(t, err)

	a, err = e.svc.ActorFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, a)
}
