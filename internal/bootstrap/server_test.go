package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/audit"
	"go-leave/internal/audit/mock"
	"go-leave/internal/bootstrap"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNewHTTPServer(t *testing.T) {
	srv := bootstrap.NewHTTPServer(gin.New(), bootstrap.ServerConfig{
		Port:         "3000",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	})

	assert.Equal(t, ":3000", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
}

func TestShutdown_RecordsAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mock.NewMockRecorder(ctrl)

	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry audit.Entry) {
		assert.Equal(t, audit.ActionServerShutdown, entry.ActionType)
		assert.Equal(t, "terminated", entry.Metadata["signal"])
	})

	srv := bootstrap.NewHTTPServer(gin.New(), bootstrap.ServerConfig{Port: "0"})
	assert.NoError(t, bootstrap.Shutdown(srv, recorder, "terminated"))
}
