package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/gin-gonic/gin"
)

type InviteController struct{ *Srv }

func GetInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

// POST /admin/invites
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Email   string      `json:"email" binding:"required,email"`
		Role    models.Role `json:"role"`        // 默认 MEMBER
		Expires int         `json:"expiresDays"` // 默认 1 天
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Expires <= 0 {
		in.Expires = 1
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleMember {
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be ADMIN or MEMBER"})
		return
	}

	// 生成一次性 token
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	token := hex.EncodeToString(buf)

	createdBy := "admin"
	if v, ok := c.Get("email"); ok {
		createdBy, _ = v.(string)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	inv := &models.Invite{
		Email:     strings.ToLower(in.Email),
		Token:     token,
		Role:      in.Role,
		ExpiresAt: time.Now().AddDate(0, 0, in.Expires),
		CreatedBy: createdBy,
	}
	if err := ic.Store.CreateInvite(ctx, inv); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 拼邀请链接（前端登录页带 inviteToken）
	link := strings.TrimRight(ic.Cfg.WebOrigin, "/") + "/login?inviteToken=" + token

	// 发邮件（若未配置 SMTP，打印日志但不报错）
	if err := ic.sendInviteMail(in.Email, link, in.Expires); err != nil {
		log.Printf("[invite email] send failed: %v", err)
	}

	c.JSON(http.StatusCreated, app.H{
		"token":  token,
		"link":   link, // 方便开发环境直接点
		"invite": inv,
	})
}

// GET /admin/invites
func (ic *InviteController) ListInvites(c *gin.Context) {
	invs, err := ic.Store.ListInvites(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"invites": invs})
}

// -------------------- 邮件发送 --------------------

func (ic *InviteController) sendInviteMail(toEmail, link string, expiresDays int) error {
	cfg := ic.Cfg

	// 未配置 SMTP → 开发模式：打印即可，不报错
	if cfg.SMTPHost == "" || (cfg.SMTPUser == "" && cfg.SMTPFrom == "") {
		log.Printf("[DEV] Invite link for %s: %s (expires in %d day(s))", toEmail, link, expiresDays)
		return nil
	}

	fromAddr := cfg.SMTPFrom
	if fromAddr == "" {
		fromAddr = cfg.SMTPUser
	}

	subject := fmt.Sprintf("%s Invitation", cfg.AppName)
	htmlBody := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>You have been invited to join <b>%s</b>. Click the button below to create your passkey and sign in:</p>
  <p>
    <a href="%s" style="display:inline-block; padding:10px 16px; background:#2563EB; color:#fff; text-decoration:none; border-radius:6px;">
      Accept Invitation
    </a>
  </p>
  <p>Or open this link directly:</p>
  <p><a href="%s">%s</a></p>
  <p>This invitation will expire in %d day(s).</p>
  <hr/>
  <p style="color:#666">If you did not expect this email, you can safely ignore it.</p>
</div>
`, cfg.AppName, link, link, link, expiresDays)

	msg := buildMIMEWithFromName(cfg.AppName, fromAddr, toEmail, subject, htmlBody)

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	addr := cfg.SMTPHost + ":" + cfg.SMTPPort
	return smtp.SendMail(addr, auth, fromAddr, []string{toEmail}, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
