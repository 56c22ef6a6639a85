package app

import (
	"net/http"
	"strings"

	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"
	"github.com/MPfria02/Library-Management-System-sub001/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

func AuthRequired(sess session.Sessions, store db.Store, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := sess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在，顺便把角色放进 Context（只查一次）
		u, err := store.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = sess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set("userID", as.UserID)
		c.Set("email", u.Email)
		c.Set("isAdmin", elevated(u, cfg))

		c.Next()
	}
}

func AdminOnly(cfg Config, store db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 已有 AuthRequired 设置的 userID
		v, ok := c.Get("userID")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		uid, _ := v.(string)
		u, err := store.FindUserByID(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !elevated(u, cfg) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// elevated 数据库角色之外，ADMIN_EMAILS 里列的邮箱一律放行，
// 管理员把自己降没了还能救回来
func elevated(u *models.User, cfg Config) bool {
	if u.IsAdmin() {
		return true
	}
	email := strings.ToLower(u.Email)
	for _, admin := range cfg.AdminEmails {
		if email == admin {
			return true
		}
	}
	return false
}
