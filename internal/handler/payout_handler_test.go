package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newPayoutTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	h := NewPayoutHandler(db)
	r := gin.New()
	r.POST("/payouts/:id/complete", h.CompletePayout)
	r.POST("/payouts/:id/fail", h.FailPayout)
	return r
}

func TestCompletePayoutAcceptsEmptyBody(t *testing.T) {
	r := newPayoutTestRouter(t)

	// 外部确认方可以不带请求体，绑定阶段不能拒绝空body
	req := httptest.NewRequest(http.MethodPost, "/payouts/1/complete", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, "无效的请求参数") {
		t.Fatalf("empty body rejected at binding: %s", body)
	}
	// 已到达logic层，失败原因是记录不存在而非参数问题
	if !strings.Contains(body, "提现记录不存在") {
		t.Fatalf("unexpected response: %s", body)
	}
}

func TestFailPayoutAcceptsEmptyBody(t *testing.T) {
	r := newPayoutTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/payouts/1/fail", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, "无效的请求参数") {
		t.Fatalf("empty body rejected at binding: %s", body)
	}
	if !strings.Contains(body, "提现记录不存在") {
		t.Fatalf("unexpected response: %s", body)
	}
}
