package lock

import (
	"context"
	"net/http"

	"go-leave/internal/shared/apperror"
)

// Locker serializes critical sections by key. Implementations must release
// the lock when fn returns, whatever it returns.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

var ErrLockNotAcquired = apperror.New(
	apperror.CodeServiceUnavailable,
	"resource is busy, please retry",
	http.StatusServiceUnavailable,
)

// UserKey guards a single employee's requests and ledger rows.
func UserKey(userID string) string {
	return "leave:lock:user:" + userID
}

// TeamKey guards approvals across one manager's direct reports.
func TeamKey(managerID string) string {
	return "leave:lock:team:" + managerID
}
