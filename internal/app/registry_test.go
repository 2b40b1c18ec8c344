package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/shared/testdb"
	"go-leave/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type harness struct {
	router *gin.Engine
	db     *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.New(t, Models()...)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &Config{
		JWTSecret:         testSecret,
		IdempotencyTTL:    time.Hour,
		LeaveMaxDays:      30,
		LeaveTeamCapacity: 3,
		CasualAllowance:   12,
		SickAllowance:     10,
		AnnualAllowance:   15,
	}

	r := gin.New()
	require.NoError(t, registerModules(r, cfg, db, rdb, zap.NewNop()))
	return &harness{router: r, db: db}
}

func (h *harness) seedUser(t *testing.T, role user.Role, managerID *uuid.UUID) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: string(role), Email: uuid.NewString() + "@example.com", Role: role, ManagerID: managerID}
	require.NoError(t, h.db.Create(&u).Error)
	return u
}

func token(t *testing.T, u user.User) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    string(u.Role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (h *harness) do(t *testing.T, method, path string, u user.User, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token(t, u))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRegistry_LeaveLifecycle(t *testing.T) {
	h := newHarness(t)

	manager := h.seedUser(t, user.RoleManager, nil)
	employee := h.seedUser(t, user.RoleEmployee, &manager.ID)

	from := time.Now().UTC().AddDate(0, 0, 7)
	ledger := balance.NewLedger(h.db, balance.NewRepository(h.db), balance.DefaultAllowances(), zap.NewNop())
	require.NoError(t, ledger.Ensure(context.Background(), employee.ID, from.Year()))

	apply := map[string]any{
		"from_date":  from.Format("2006-01-02"),
		"to_date":    from.Format("2006-01-02"),
		"leave_type": "casual",
		"reason":     "dentist",
	}

	w := h.do(t, http.MethodPost, "/api/v1/leaves", employee, apply, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var applied struct {
		Leave struct {
			ID string `json:"id"`
		} `json:"leave"`
		RemainingBalance int `json:"remaining_balance"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &applied))
	assert.Equal(t, 11, applied.RemainingBalance)

	replay := h.do(t, http.MethodPost, "/api/v1/leaves", employee, apply, "Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.JSONEq(t, w.Body.String(), replay.Body.String())

	w = h.do(t, http.MethodPut, "/api/v1/team/leaves/"+applied.Leave.ID, employee, map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, "/api/v1/team/leaves/"+applied.Leave.ID, manager, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/api/v1/team/members", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []user.UserResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &members))
	require.Len(t, members, 1)
	assert.Equal(t, employee.ID.String(), members[0].ID)

	w = h.do(t, http.MethodDelete, "/api/v1/leaves/"+applied.Leave.ID, employee, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", decode(t, w).Error.Code)

	remaining, err := ledger.Get(context.Background(), employee.ID, balance.TypeCasual, from.Year())
	require.NoError(t, err)
	assert.Equal(t, 11, remaining)
}

func TestRegistry_RejectsMissingToken(t *testing.T) {
	h := newHarness(t)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leaves/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegistry_AuditLogsAdminOnly(t *testing.T) {
	h := newHarness(t)
	manager := h.seedUser(t, user.RoleManager, nil)
	admin := h.seedUser(t, user.RoleAdmin, nil)

	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/api/v1/admin/audit-logs", manager, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/admin/audit-logs", admin, nil).Code)
}
