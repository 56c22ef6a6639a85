package controllers

import (
	"net/http"
	"testing"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRole_Endpoint(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	ck := e.login(t, admin.ID)

	// 提成管理员
	w := e.do(t, http.MethodPut, "/api/users/"+reader.ID+"/role", map[string]any{"role": "ADMIN"}, ck)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "ADMIN", u["role"])

	// 降回去
	w = e.do(t, http.MethodPut, "/api/users/"+reader.ID+"/role", map[string]any{"role": "MEMBER"}, ck)
	require.Equal(t, http.StatusOK, w.Code)

	// 最后一个管理员降不得
	w = e.do(t, http.MethodPut, "/api/users/"+admin.ID+"/role", map[string]any{"role": "MEMBER"}, ck)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 没这个角色
	w = e.do(t, http.MethodPut, "/api/users/"+reader.ID+"/role", map[string]any{"role": "OWNER"}, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 读者无权改角色
	w = e.do(t, http.MethodPut, "/api/users/"+admin.ID+"/role", map[string]any{"role": "MEMBER"}, e.login(t, reader.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUser_WithOpenBorrows(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	b := e.seedBook(t, "9780000000001", 1)

	require.Equal(t, http.StatusCreated,
		e.do(t, http.MethodPost, "/api/books/"+b.ID+"/borrow", nil, e.login(t, reader.ID)).Code)

	ck := e.login(t, admin.ID)
	w := e.do(t, http.MethodGet, "/api/users/"+reader.ID, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, reader.Email, body["user"].(map[string]any)["email"])
	assert.Len(t, body["openBorrows"].([]any), 1)

	w = e.do(t, http.MethodGet, "/api/users/not-a-uuid", nil, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/users/00000000-0000-0000-0000-000000000000", nil, ck)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsers_Search(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	e.seedUser(t, "alice@example.com", models.RoleMember)
	e.seedUser(t, "bob@example.com", models.RoleMember)
	ck := e.login(t, admin.ID)

	w := e.do(t, http.MethodGet, "/api/users", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["total"])

	w = e.do(t, http.MethodGet, "/api/users?q=alice", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestMeAndUpdateMe(t *testing.T) {
	e := newEnv(t)
	reader := e.seedUser(t, "reader@example.com", models.RoleMember)
	ck := e.login(t, reader.ID)

	w := e.do(t, http.MethodGet, "/api/me", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, reader.Email, body["user"].(map[string]any)["email"])
	assert.Equal(t, false, body["hasPassword"])
	assert.Equal(t, float64(0), body["passkeys"])

	w = e.do(t, http.MethodPut, "/api/me", map[string]any{"displayName": "Reader One"}, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reader One", decode(t, w)["user"].(map[string]any)["displayName"])

	// displayName 必填
	w = e.do(t, http.MethodPut, "/api/me", map[string]any{}, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
