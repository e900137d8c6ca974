package handler

import (
	"bytes"
	"campus_auth/internal/app/service"
	"campus_auth/internal/common/security"
	"campus_auth/internal/domain/model"
	"campus_auth/internal/domain/policy"
	"campus_auth/internal/domain/repository"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// brokenRepository fails every call with a storage error.
type brokenRepository struct{}

var errStorage = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (brokenRepository) FindByEmail(context.Context, model.Variant, string) (*model.Account, error) {
	return nil, errStorage
}

func (brokenRepository) Insert(context.Context, *model.Account) (*model.Account, error) {
	return nil, errStorage
}

func (brokenRepository) Update(context.Context, model.Variant, string, model.AccountPatch) error {
	return errStorage
}

func (brokenRepository) List(context.Context, model.Variant) ([]*model.Account, error) {
	return nil, errStorage
}

func newRouter(t *testing.T, repo repository.AccountRepository, logs *bytes.Buffer) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	tokens, err := security.NewTokenIssuer([]byte("handler-secret"), time.Hour)
	require.NoError(t, err)

	svc := service.NewAccountService(repo, security.NewBcryptHasher(bcrypt.MinCost), tokens,
		policy.NewEmailPolicy("", nil), nil, logger, service.Timeouts{})

	r := chi.NewRouter()
	h := NewAccountHandler(svc, logger)
	h.RegisterRoutes(r)
	h.RegisterListRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestRegister_Created(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	rr, body := do(r, http.MethodPost, "/faculty/register",
		`{"email":"ao@rguktsklm.ac.in","password":"longenough1","userName":"Dr. A"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{
		"isSuccess": true,
		"message":   "Faculty email registration successful",
	}, body)
}

func TestRegister_ValidationStatus(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	rr, body := do(r, http.MethodPost, "/student/register",
		`{"email":"john@gmail.com","password":"longenough1","userName":"John"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, body["isSuccess"])
	assert.Equal(t, "Invalid email domain. Only '@rguktsklm.ac.in' emails are allowed.", body["message"])
	assert.Empty(t, logs.String())
}

func TestLogin_ReturnsToken(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	rr, _ := do(r, http.MethodPost, "/student/register",
		`{"email":"john@rguktsklm.ac.in","password":"longenough1","userName":"John"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, body := do(r, http.MethodPost, "/student/login", `{"email":"john@rguktsklm.ac.in","password":"longenough1"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Student login successful", body["message"])
	assert.NotEmpty(t, body["jwt_token"])
	assert.NotContains(t, logs.String(), "longenough1")
}

func TestRepresentativeLogin_Forbidden(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	do(r, http.MethodPost, "/student/register",
		`{"email":"john@rguktsklm.ac.in","password":"longenough1","userName":"John","isRepresentative":false}`)

	rr, body := do(r, http.MethodPost, "/representative/login", `{"email":"john@rguktsklm.ac.in","password":"longenough1"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Nil(t, body["jwt_token"])
}

func TestMalformedPayload(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	for _, path := range []string{"/student/register", "/faculty/login", "/representative/login"} {
		rr, body := do(r, http.MethodPost, path, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, false, body["isSuccess"], path)
	}
	rr, _ := do(r, http.MethodPut, "/faculty/change-password", `[]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInternalErrorIsGeneric(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, brokenRepository{}, &logs)

	rr, body := do(r, http.MethodPost, "/student/register",
		`{"email":"john@rguktsklm.ac.in","password":"longenough1","userName":"John"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to register student", body["message"])
	assert.NotContains(t, rr.Body.String(), "connection refused")
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), "INTERNAL")
}

func TestList_EmptyIsArray(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, repository.NewMemoryAccountRepository(), &logs)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
