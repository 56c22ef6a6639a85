// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"
)

// BootstrapFirstAdmin 空库起服务时给 BOOTSTRAP_ADMIN_EMAIL 生成一张
// 管理员邀请并把注册链接打到日志里。已经有管理员就什么都不做。
func BootstrapFirstAdmin(ctx context.Context, cfg Config, store db.Store) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := store.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return
	}

	// 一次性邀请
	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	inv := &models.Invite{
		Email:     cfg.BootstrapEmail,
		Token:     token,
		Role:      models.RoleAdmin,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedBy: "bootstrap",
	}
	if err := store.CreateInvite(ctx, inv); err != nil {
		log.Printf("bootstrap invite failed: %v", err)
		return
	}

	// 打印邀请链接（直接点开注册）
	link := fmt.Sprintf("%s/login?inviteToken=%s", cfg.WebOrigin, token)
	log.Printf("[BOOTSTRAP] no admin yet, created an admin invite for %s", cfg.BootstrapEmail)
	log.Printf("[BOOTSTRAP] open this URL to register the first admin: %s", link)
}
