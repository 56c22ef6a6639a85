package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Store.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id 单个用户 + 手上在借的书
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "user id is required"})
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	user, err := uc.Store.FindUserByID(c.Request.Context(), id)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	open, err := uc.Store.ListUserBorrows(c.Request.Context(), id, "open")
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"user":        user,
		"openBorrows": open,
	})
}

// PUT /api/users/:id/role  改角色。账号不删（借阅历史挂在人身上），
// 要封的号降成 MEMBER 再踢会话就够了
func (uc *UserController) SetRole(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleMember {
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be ADMIN or MEMBER"})
		return
	}

	u, err := uc.Store.SetUserRole(c.Request.Context(), id, in.Role)
	if err != nil {
		replyStoreErr(c, err)
		return
	}

	// 改完踢掉该用户的所有会话，旧登录态不带着旧角色继续跑
	_ = uc.Sess.RevokeAllForUser(c.Request.Context(), id)

	uc.audit(c, models.AuditRoleChange, "", id, fmt.Sprintf("role=%s", in.Role))
	c.JSON(http.StatusOK, app.H{"user": u})
}

// GET /api/me
func (uc *UserController) Me(c *gin.Context) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := uc.Store.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	creds, _ := uc.Store.LoadUserCredentials(c.Request.Context(), uid)
	c.JSON(http.StatusOK, app.H{
		"user":        u,
		"passkeys":    len(creds),
		"hasPassword": u.PasswordHash != nil,
	})
}

// PUT /api/me 只开放改显示名，邮箱是登录名不让动
func (uc *UserController) UpdateMe(c *gin.Context) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		DisplayName string `json:"displayName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := uc.Store.UpdateUserProfile(c.Request.Context(), uid, in.DisplayName)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
