package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finscope/internal/dto/request"
	"finscope/internal/dto/response"
	"finscope/internal/usecase"
	"finscope/pkg/apperror"
	"finscope/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTransactions overrides only what a test needs; other methods panic.
type stubTransactions struct {
	usecase.TransactionService
	get    func(ctx context.Context, id uuid.UUID) (*response.TransactionResponse, error)
	create func(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error)
}

func (s *stubTransactions) Get(ctx context.Context, id uuid.UUID) (*response.TransactionResponse, error) {
	return s.get(ctx, id)
}

func (s *stubTransactions) Create(ctx context.Context, userID uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
	return s.create(ctx, userID, req)
}

type stubAuth struct {
	usecase.AuthService
	login func(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
}

func (s *stubAuth) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	return s.login(ctx, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var body utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func withUser(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(utils.SetAuthUser(r.Context(), utils.AuthUser{ID: id, IsVerified: true}))
}

func TestHandleServiceError_MapsKinds(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("amount must be positive"), http.StatusBadRequest, "amount must be positive"},
		{apperror.Authentication("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{apperror.Authorization("nope"), http.StatusForbidden, "nope"},
		{apperror.NotFound("User not found"), http.StatusNotFound, "User not found"},
		{apperror.Conflict("Email already registered"), http.StatusConflict, "Email already registered"},
		{apperror.Upstream("Could not send", errors.New("smtp down")), http.StatusBadGateway, "Could not send"},
		{apperror.RateLimited("slow down"), http.StatusTooManyRequests, "slow down"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(zap.NewNop(), rec, tt.err, "test")

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestLogin_ValidationErrorsBeforeService(t *testing.T) {
	called := false
	h := NewAuthHandler(&stubAuth{login: func(context.Context, *request.LoginRequest) (*response.LoginResponse, error) {
		called = true
		return nil, nil
	}}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"not-an-email"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body.Error)
	assert.NotEmpty(t, body.Errors)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuth{login: func(_ context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
		return &response.LoginResponse{MaskedEmail: utils.MaskEmail(req.Email)}, nil
	}}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"alice@x.com","password":"secret-pass"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"maskedEmail":"al••••••@x.com"`)
	assert.Contains(t, rec.Body.String(), `"mustChangePassword":false`)
}

func TestTransactionGet_ForeignOwnerIsForbidden(t *testing.T) {
	owner := uuid.New()
	svc := &stubTransactions{get: func(ctx context.Context, id uuid.UUID) (*response.TransactionResponse, error) {
		if err := utils.CheckOwnership(ctx, owner); err != nil {
			return nil, err
		}
		return &response.TransactionResponse{ID: id.String()}, nil
	}}

	r := chi.NewRouter()
	r.Get("/api/transactions/{id}", NewTransactionHandler(svc, zap.NewNop()).Get)

	id := uuid.New()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil), uuid.New()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil), owner))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/transactions/not-a-uuid", nil), owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionCreate(t *testing.T) {
	userID := uuid.New()
	var got *request.TransactionRequest
	svc := &stubTransactions{create: func(_ context.Context, uid uuid.UUID, req *request.TransactionRequest) (*response.TransactionResponse, error) {
		assert.Equal(t, userID, uid)
		got = req
		return &response.TransactionResponse{Amount: req.Amount, Type: req.Type, Date: req.Date}, nil
	}}
	h := NewTransactionHandler(svc, zap.NewNop())

	body := `{"categoryId":"` + uuid.NewString() + `","amount":45.5,"type":"gasto","description":"super","date":"2024-01-16"}`
	rec := httptest.NewRecorder()
	h.Create(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body)), userID))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.InDelta(t, 45.5, got.Amount, 0.001)

	rec = httptest.NewRecorder()
	bad := `{"categoryId":"x","amount":0,"type":"otro","date":"16/01/2024"}`
	h.Create(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(bad)), userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
