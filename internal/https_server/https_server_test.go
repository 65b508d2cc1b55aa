package https_server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"campus_chat/internal/config"
	"campus_chat/internal/dao/kv"
	"campus_chat/internal/handler"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestInit_Middleware(t *testing.T) {
	conf := config.Default()
	svc := service.NewServices(kv.NewMemoryStore(), mq.Nop{}, nil, conf)
	engine := Init(conf, handler.NewHandlers(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
