// controllers/auth_controller.go
package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// 密码口子给没有 Passkey 条件的环境兜底（curl / 老浏览器 / CLI），
// 同一账号密码和 Passkey 可以并存。

func (s *Srv) PasswordRegister(c *gin.Context) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	// 原子核销，同一邀请并发注册只有一个能走到这之后
	inv, err := s.Store.ConsumeInvite(ctx, in.InviteToken, time.Now())
	if err != nil {
		if errors.Is(err, db.ErrInviteNotFound) || errors.Is(err, db.ErrInviteNotUsable) {
			c.JSON(403, app.H{"error": "invalid or expired invite"})
			return
		}
		c.JSON(500, app.H{"error": err.Error()})
		return
	}

	u, err := s.userForInvite(ctx, inv)
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	if in.DisplayName != "" {
		if _, err := s.Store.UpdateUserProfile(ctx, u.ID, in.DisplayName); err != nil {
			c.JSON(500, app.H{"error": err.Error()})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	if err := s.Store.SetUserPassword(ctx, u.ID, string(hash)); err != nil {
		replyStoreErr(c, err)
		return
	}

	if err := s.issueSession(ctx, c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(500, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(201, app.H{"ok": true, "email": u.Email})
}

func (s *Srv) PasswordLogin(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	// 账号不存在和密码不对回同一个 401，不帮人探号
	u, err := s.Store.FindUserByEmail(ctx, in.Email)
	if err != nil || u.PasswordHash == nil {
		c.JSON(401, app.H{"error": "bad credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(401, app.H{"error": "bad credentials"})
		return
	}

	if err := s.issueSession(ctx, c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(500, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(200, app.H{"ok": true})
}
