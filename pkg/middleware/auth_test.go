package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finscope/internal/data/entity"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "middleware-test-secret"

type stubSessions struct {
	sessions map[uuid.UUID]*entity.Session
}

func (s *stubSessions) Create(_ context.Context, session *entity.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessions) FindValidSession(_ context.Context, id uuid.UUID, now time.Time) (*entity.Session, error) {
	session, ok := s.sessions[id]
	if !ok || session.RevokedAt != nil || !session.ExpiresAt.After(now) {
		return nil, nil
	}
	return session, nil
}

func (s *stubSessions) Revoke(_ context.Context, id uuid.UUID) error {
	if session, ok := s.sessions[id]; ok {
		now := time.Now()
		session.RevokedAt = &now
	}
	return nil
}

func (s *stubSessions) RevokeAllUserSessions(context.Context, uuid.UUID) error { return nil }

func (s *stubSessions) CleanExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubUsers struct {
	users map[uuid.UUID]*entity.User
}

func (s *stubUsers) Create(context.Context, *entity.User) error { return nil }

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) FindByEmail(context.Context, string) (*entity.User, error) { return nil, nil }

func (s *stubUsers) FindAll(context.Context, int, int) ([]*entity.User, error) { return nil, nil }

func (s *stubUsers) CountAll(context.Context) (int64, error) { return 0, nil }

func (s *stubUsers) Update(context.Context, *entity.User) error { return nil }

func (s *stubUsers) UpdatePassword(context.Context, uuid.UUID, string, *string, bool) error {
	return nil
}

func (s *stubUsers) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

func (s *stubUsers) MarkVerified(context.Context, uuid.UUID) error { return nil }

func (s *stubUsers) Delete(context.Context, uuid.UUID) error { return nil }

type gate struct {
	tokens   *token.Manager
	sessions *stubSessions
	users    *stubUsers
	handler  http.Handler
	reached  bool
	seen     utils.AuthUser
}

func newGate(t *testing.T, chain ...func(http.Handler) http.Handler) *gate {
	t.Helper()
	g := &gate{
		tokens:   token.NewManager(testSecret, "finscope", time.Hour),
		sessions: &stubSessions{sessions: map[uuid.UUID]*entity.Session{}},
		users:    &stubUsers{users: map[uuid.UUID]*entity.User{}},
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.reached = true
		g.seen, _ = utils.GetAuthUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	g.handler = Authenticate(g.tokens, g.sessions, g.users, zap.NewNop())(h)
	return g
}

// login stores a user with a live session and returns a bearer token for it.
func (g *gate) login(t *testing.T, mutate func(u *entity.User)) string {
	t.Helper()
	user := &entity.User{
		Base:       entity.Base{ID: uuid.New()},
		Email:      "alice@x.com",
		FirstName:  "Alice",
		RoleID:     entity.RoleUser,
		IsActive:   true,
		IsVerified: true,
	}
	if mutate != nil {
		mutate(user)
	}
	g.users.users[user.ID] = user

	signed, claims, err := g.tokens.Issue(token.Identity{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	sessionID, err := claims.SessionID()
	require.NoError(t, err)
	g.sessions.sessions[sessionID] = &entity.Session{
		BaseSimple: entity.BaseSimple{ID: sessionID},
		UserID:     user.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	return signed
}

func (g *gate) do(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_AcceptsValidToken(t *testing.T) {
	g := newGate(t)
	signed := g.login(t, nil)

	rec := g.do("Bearer " + signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, g.reached)
	assert.Equal(t, "alice@x.com", g.seen.Email)
	assert.True(t, g.seen.IsVerified)
}

func TestAuthenticate_RejectsBeforeHandler(t *testing.T) {
	g := newGate(t)
	signed := g.login(t, nil)

	expired, _, err := token.NewManager(testSecret, "finscope", -time.Minute).Issue(token.Identity{UserID: uuid.New()})
	require.NoError(t, err)
	forged, _, err := token.NewManager("another-secret", "finscope", time.Hour).Issue(token.Identity{UserID: uuid.New()})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + signed},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"bad signature", "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.reached = false
			rec := g.do(tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, g.reached)

			var body utils.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestAuthenticate_RevokedSessionAndInactiveUser(t *testing.T) {
	g := newGate(t)

	revoked := g.login(t, nil)
	claims, err := g.tokens.Verify(revoked)
	require.NoError(t, err)
	sessionID, _ := claims.SessionID()
	require.NoError(t, g.sessions.Revoke(context.Background(), sessionID))
	assert.Equal(t, http.StatusUnauthorized, g.do("Bearer "+revoked).Code)

	inactive := g.login(t, func(u *entity.User) { u.IsActive = false })
	assert.Equal(t, http.StatusUnauthorized, g.do("Bearer "+inactive).Code)
	assert.False(t, g.reached)
}

func TestAuthenticate_RejectsSessionOfAnotherUser(t *testing.T) {
	g := newGate(t)

	signed := g.login(t, nil)
	claims, err := g.tokens.Verify(signed)
	require.NoError(t, err)
	sessionID, _ := claims.SessionID()

	mallory := &entity.User{Base: entity.Base{ID: uuid.New()}, Email: "mallory@x.com", IsActive: true}
	g.users.users[mallory.ID] = mallory
	g.sessions.sessions[sessionID].UserID = mallory.ID

	rec := g.do("Bearer " + signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, g.reached)
}

func TestRequireVerification(t *testing.T) {
	g := newGate(t, RequireVerification)

	unverified := g.login(t, func(u *entity.User) { u.IsVerified = false })
	assert.Equal(t, http.StatusForbidden, g.do("Bearer "+unverified).Code)
	assert.False(t, g.reached)

	verified := g.login(t, nil)
	assert.Equal(t, http.StatusOK, g.do("Bearer "+verified).Code)
}

func TestRequireAdmin(t *testing.T) {
	g := newGate(t, RequireAdmin(zap.NewNop()))

	user := g.login(t, nil)
	assert.Equal(t, http.StatusForbidden, g.do("Bearer "+user).Code)
	assert.False(t, g.reached)

	admin := g.login(t, func(u *entity.User) { u.RoleID = entity.RoleAdmin })
	assert.Equal(t, http.StatusOK, g.do("Bearer "+admin).Code)
	assert.True(t, g.reached)
}
