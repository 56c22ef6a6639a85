package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowAndReturnEndpoints(t *testing.T) {
	e := newEnv(t)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	book := e.seedBook(t, "9780000000001", 2)
	ck := e.login(t, reader.ID)

	// 借出
	w := e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, ck)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, string(models.StatusBorrowed), body["status"])
	assert.NotEmpty(t, body["dueDate"])
	assert.Nil(t, body["returnDate"])

	w = e.do(t, http.MethodGet, "/api/books/"+book.ID, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["availableCopies"])

	// 同一本书不能再借
	w = e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, ck)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 归还
	w = e.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", nil, ck)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, string(models.StatusReturned), body["status"])
	assert.NotEmpty(t, body["returnDate"])

	w = e.do(t, http.MethodGet, "/api/books/"+book.ID, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["availableCopies"])

	// 没有在借记录，再还吃 409
	w = e.do(t, http.MethodPost, "/api/books/"+book.ID+"/return", nil, ck)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBorrowEndpoint_Conflicts(t *testing.T) {
	e := newEnv(t)
	alice := e.seedUser(t, "alice@example.com", models.RoleMember)
	bob := e.seedUser(t, "bob@example.com", models.RoleMember)
	book := e.seedBook(t, "9780000000001", 1)

	w := e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, e.login(t, alice.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	// 没库存了
	w = e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, e.login(t, bob.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	// 不存在的书
	w = e.do(t, http.MethodPost, "/api/books/00000000-0000-0000-0000-000000000000/borrow", nil, e.login(t, bob.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowEndpoint_RequiresAuth(t *testing.T) {
	e := newEnv(t)
	book := e.seedBook(t, "9780000000001", 1)

	w := e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil,
		&http.Cookie{Name: "app_session", Value: "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyBorrows_StatusFilter(t *testing.T) {
	e := newEnv(t)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	b1 := e.seedBook(t, "9780000000001", 1)
	b2 := e.seedBook(t, "9780000000002", 1)
	ck := e.login(t, reader.ID)

	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/books/"+b1.ID+"/borrow", nil, ck).Code)
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/books/"+b2.ID+"/borrow", nil, ck).Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/books/"+b2.ID+"/return", nil, ck).Code)

	w := e.do(t, http.MethodGet, "/api/borrows/mine?status=open", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	recs := decode(t, w)["records"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, b1.ID, recs[0].(map[string]any)["bookId"])

	w = e.do(t, http.MethodGet, "/api/borrows/mine?status=returned", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["records"].([]any), 1)
}

func TestDeskBorrowAndReturn(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	book := e.seedBook(t, "9780000000001", 1)
	ck := e.login(t, admin.ID)

	// 扫 ISBN 代借
	w := e.do(t, http.MethodPost, "/admin/circulation/borrow",
		map[string]any{"userEmail": reader.Email, "isbn": book.ISBN}, ck)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	recs, err := e.store.ListUserBorrows(context.Background(), reader.ID, "open")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// 代还走 bookId
	w = e.do(t, http.MethodPost, "/admin/circulation/return",
		map[string]any{"userEmail": reader.Email, "bookId": book.ID}, ck)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 查不到的读者
	w = e.do(t, http.MethodPost, "/admin/circulation/borrow",
		map[string]any{"userEmail": "ghost@example.com", "isbn": book.ISBN}, ck)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 书的定位字段一个都没给
	w = e.do(t, http.MethodPost, "/admin/circulation/borrow",
		map[string]any{"userEmail": reader.Email}, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCirculationList(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	book := e.seedBook(t, "9780000000001", 1)

	require.Equal(t, http.StatusCreated,
		e.do(t, http.MethodPost, "/api/books/"+book.ID+"/borrow", nil, e.login(t, reader.ID)).Code)

	adminCk := e.login(t, admin.ID)
	w := e.do(t, http.MethodGet, "/admin/circulation?status=open", nil, adminCk)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	row := body["records"].([]any)[0].(map[string]any)
	assert.Equal(t, reader.Email, row["userEmail"])
	assert.Equal(t, book.ISBN, row["bookIsbn"])

	// 过滤到另一个读者名下时为空
	w = e.do(t, http.MethodGet, "/admin/circulation?userId="+admin.ID, nil, adminCk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	// 普通读者摸不到台账
	w = e.do(t, http.MethodGet, "/admin/circulation", nil, e.login(t, reader.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
