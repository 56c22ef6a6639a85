package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"
	"github.com/MPfria02/Library-Management-System-sub001/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// env 起一套完整路由：MemoryStore + JWT 会话，
// 不碰 Postgres / Redis，也不挂 WebAuthn 流程。
type env struct {
	store *db.MemoryStore
	sess  session.Sessions
	r     *gin.Engine
	now   *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	cfg := app.Config{
		WebOrigin:  "http://localhost:5173",
		SessionTTL: time.Hour,
		LoanDays:   models.DefaultLoanPeriodDays,
	}
	sess := session.NewJWTSessionStore([]byte("test-secret"), time.Hour)
	s := &Srv{Store: store, Sess: sess, WebOrigin: cfg.WebOrigin, Cfg: cfg}

	authMW := app.AuthRequired(sess, store, cfg)
	adminMW := app.AdminOnly(cfg, store)

	uc := GetUserController(s)
	bookCtl := NewBookController(s)
	borrowCtl := NewBorrowController(s)
	inviteCtl := GetInviteController(s)
	auditCtl := NewAuditController(s)

	r := gin.New()
	r.POST("/auth/register", s.PasswordRegister)
	r.POST("/auth/login", s.PasswordLogin)

	me := r.Group("/api/me", authMW)
	me.GET("", uc.Me)
	me.PUT("", uc.UpdateMe)

	books := r.Group("/api/books", authMW)
	books.GET("", bookCtl.ListBooks)
	books.GET("/:id", bookCtl.GetBook)
	books.POST("/:id/borrow", borrowCtl.Borrow)
	books.POST("/:id/return", borrowCtl.Return)

	booksAdmin := r.Group("/api/books", authMW, adminMW)
	booksAdmin.POST("", bookCtl.CreateBook)
	booksAdmin.PUT("/:id", bookCtl.UpdateBook)
	booksAdmin.PATCH("/:id/copies", bookCtl.ResizeCopies)
	booksAdmin.DELETE("/:id", bookCtl.DeleteBook)

	borrows := r.Group("/api/borrows", authMW)
	borrows.GET("/mine", borrowCtl.MyBorrows)

	users := r.Group("/api/users", authMW, adminMW)
	users.GET("", uc.ListUsers)
	users.GET("/:id", uc.GetUser)
	users.PUT("/:id/role", uc.SetRole)

	admin := r.Group("/admin", authMW, adminMW)
	admin.GET("/circulation", borrowCtl.AdminListBorrows)
	admin.POST("/circulation/borrow", borrowCtl.AdminBorrow)
	admin.POST("/circulation/return", borrowCtl.AdminReturn)
	admin.POST("/invites", inviteCtl.CreateInvite)
	admin.GET("/invites", inviteCtl.ListInvites)
	admin.GET("/audit", auditCtl.ListAudit)

	return &env{store: store, sess: sess, r: r, now: &now}
}

func (e *env) seedUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, DisplayName: email, Role: role}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *env) seedBook(t *testing.T, isbn string, copies int) *models.Book {
	t.Helper()
	b := &models.Book{
		ISBN: isbn, Title: "title-" + isbn, Author: "author",
		TotalCopies: copies, AvailableCopies: copies,
	}
	require.NoError(t, e.store.CreateBook(context.Background(), b))
	return b
}

// login 直接签一个会话 cookie，绕开登录接口
func (e *env) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	tok, err := e.sess.Create(context.Background(), userID)
	require.NoError(t, err)
	return &http.Cookie{Name: app.AppSessionCookie, Value: tok}
}

func (e *env) do(t *testing.T, method, path string, body any, ck *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}
