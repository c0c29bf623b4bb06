package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripdesk/tripdesk/internal/platform/docstore"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// countingStore records inserts made through the wrapped store.
type countingStore struct {
	docstore.Store
	inserts atomic.Int32
}

func (s *countingStore) Insert(ctx context.Context, collection, key string, body any) (string, error) {
	s.inserts.Add(1)
	return s.Store.Insert(ctx, collection, key, body)
}

type failingRepo struct{ err error }

func (r failingRepo) FindByEmail(context.Context, string) (Credential, error) {
	return Credential{}, r.err
}

func (r failingRepo) Create(context.Context, Credential) (string, error) { return "", r.err }

// racingRepo hides existing records from the pre-check so the store's
// uniqueness guarantee is the only line of defence.
type racingRepo struct{ *DocRepository }

func (r racingRepo) FindByEmail(context.Context, string) (Credential, error) {
	return Credential{}, shared.ErrNotFound
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	codec, err := NewCodec(testSecret, 30*time.Minute)
	require.NoError(t, err)
	return NewService(repo, NewHasher(bcrypt.MinCost), codec)
}

func TestServiceScenarioRegisterLoginAuthorize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@x.com",
		Password: "pw1",
		Role:     RoleUser,
		Profile:  Profile{FullName: "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", registered.IdentityKey)
	assert.Equal(t, RoleUser, registered.Role)
	assert.NotEmpty(t, registered.ID)

	session, err := svc.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, session.TokenType)
	assert.Equal(t, RoleUser, session.Role)
	assert.NotEmpty(t, session.AccessToken)

	guard := NewGuard(svc.Codec(), nil, nil)
	identity, err := guard.Authenticate(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "alice@x.com", Role: RoleUser}, identity)

	assert.ErrorIs(t, Authorize(identity, RoleAdmin), shared.ErrForbidden)
	assert.NoError(t, Authorize(identity, RoleUser))
}

func TestServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))
	_, err := svc.Register(ctx, RegisterInput{Email: "alice@x.com", Password: "pw1", Profile: Profile{FullName: "Alice"}})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@x.com", "pw")
	_, wrongErr := svc.Login(ctx, "alice@x.com", "wrongpw")

	assert.ErrorIs(t, unknownErr, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, shared.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestServiceLoginIsCaseInsensitiveOnIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))
	_, err := svc.Register(ctx, RegisterInput{Email: "Alice@X.com", Password: "pw1", Profile: Profile{FullName: "Alice"}})
	require.NoError(t, err)

	session, err := svc.Login(ctx, "  ALICE@x.COM ", "pw1")
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Subject)
}

func TestServiceRegisterKeepsDistinctMailboxesApart(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))

	for _, email := range []string{"straße@x.com", "strasse@x.com"} {
		registered, err := svc.Register(ctx, RegisterInput{Email: email, Password: "pw1", Profile: Profile{FullName: "S"}})
		require.NoError(t, err, email)
		assert.Equal(t, email, registered.IdentityKey)
	}

	session, err := svc.Login(ctx, "STRAßE@x.com", "pw1")
	require.NoError(t, err)
	claims, err := svc.Codec().Decode(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "straße@x.com", claims.Subject)
}

func TestServiceLoginDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: docstore.NewMemoryStore()}
	svc := newTestService(t, NewRepository(store))
	_, err := svc.Register(ctx, RegisterInput{Email: "alice@x.com", Password: "pw1", Profile: Profile{FullName: "Alice"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, store.inserts.Load())

	_, _ = svc.Login(ctx, "alice@x.com", "pw1")
	_, _ = svc.Login(ctx, "alice@x.com", "nope")
	_, _ = svc.Login(ctx, "nobody@x.com", "pw1")
	assert.EqualValues(t, 1, store.inserts.Load())
}

func TestServiceRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemoryStore()
	store := &countingStore{Store: mem}
	svc := newTestService(t, NewRepository(store))
	input := RegisterInput{Email: "alice@x.com", Password: "pw1", Profile: Profile{FullName: "Alice"}}

	_, err := svc.Register(ctx, input)
	require.NoError(t, err)
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, shared.ErrAlreadyRegistered)

	input.Email = "ALICE@x.com"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, shared.ErrAlreadyRegistered)

	docs, err := mem.List(ctx, CredentialsCollection)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.EqualValues(t, 1, store.inserts.Load())
}

func TestServiceRegisterDuplicateRace(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemoryStore()
	svc := newTestService(t, racingRepo{NewRepository(mem)})

	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{Email: "alice@x.com", Password: "pw1", Profile: Profile{FullName: "Alice"}})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, shared.ErrAlreadyRegistered):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 7, dup.Load())
	docs, err := mem.List(ctx, CredentialsCollection)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestServiceRegisterNeverStoresPlaintext(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemoryStore()
	svc := newTestService(t, NewRepository(mem))
	registered, err := svc.Register(ctx, RegisterInput{Email: "alice@x.com", Password: "pw1-plain", Profile: Profile{FullName: "Alice"}})
	require.NoError(t, err)

	doc, err := mem.FindByID(ctx, CredentialsCollection, registered.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Body), "pw1-plain")

	var cred Credential
	require.NoError(t, doc.Decode(&cred))
	assert.Equal(t, RoleUser, cred.Role)
	cost, err := bcrypt.Cost([]byte(cred.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestServiceRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"empty email", RegisterInput{Email: " ", Password: "pw"}},
		{"empty password", RegisterInput{Email: "a@x.com"}},
		{"unknown role", RegisterInput{Email: "a@x.com", Password: "pw", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestServiceStoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	svc := newTestService(t, failingRepo{err: boom})

	_, err := svc.Login(ctx, "alice@x.com", "pw1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Register(ctx, RegisterInput{Email: "alice@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, shared.ErrAlreadyRegistered)
}

func TestServiceLoginCorruptHash(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemoryStore()
	_, err := mem.Insert(ctx, CredentialsCollection, "alice@x.com", Credential{
		Email:        "alice@x.com",
		PasswordHash: "garbage",
		Role:         RoleUser,
	})
	require.NoError(t, err)
	svc := newTestService(t, NewRepository(mem))

	_, err = svc.Login(ctx, "alice@x.com", "pw1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestServiceEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewRepository(docstore.NewMemoryStore()))

	created, err := svc.EnsureAdmin(ctx, "root@x.com", "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@x.com", "admin-pass")
	require.NoError(t, err)
	assert.False(t, created)

	session, err := svc.Login(ctx, "root@x.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, session.Role)
}
