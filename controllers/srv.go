// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"
	"github.com/MPfria02/Library-Management-System-sub001/session"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

type Srv struct {
	WA        *webauthn.WebAuthn
	Store     db.Store
	Ceremony  *session.Store
	Sess      session.Sessions
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		WA:        a.WA,
		Store:     a.Store,
		Ceremony:  session.NewStore(a.RDB, a.Config.CeremonyTTL),
		Sess:      a.Sess,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string, ip, ua string) error {
	if err := s.Store.TouchUserLogin(ctx, userID, ip, ua); err != nil {
		// 不阻塞
	}
	id, err := s.Sess.Create(ctx, userID)
	if err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// replyStoreErr 把仓储层哨兵错误翻成 HTTP 码：
// 找不到 404，业务规则 / 重复 409，其余（含计数损坏）500
func replyStoreErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrBookNotFound),
		errors.Is(err, db.ErrRecordNotFound),
		errors.Is(err, db.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrBookNotAvailable),
		errors.Is(err, db.ErrAlreadyBorrowed),
		errors.Is(err, db.ErrNotBorrowed),
		errors.Is(err, db.ErrCopiesOutstanding),
		errors.Is(err, db.ErrLastAdmin),
		errors.Is(err, db.ErrInviteNotUsable),
		errors.Is(err, db.ErrDuplicateISBN),
		errors.Is(err, db.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// 审计流水，写失败只记日志不影响主流程
func (s *Srv) audit(c *gin.Context, action string, bookID, subjectID, detail string) {
	e := &models.AuditLog{Action: action}
	if bookID != "" {
		e.BookID = &bookID
	}
	if subjectID != "" {
		e.SubjectID = &subjectID
	}
	if detail != "" {
		e.Detail = &detail
	}
	if v, ok := c.Get("userID"); ok {
		e.ActorID, _ = v.(string)
	}
	if v, ok := c.Get("email"); ok {
		e.ActorEmail, _ = v.(string)
	}
	if err := s.Store.AppendAudit(c.Request.Context(), e); err != nil {
		log.Printf("audit append: %v", err)
	}
}

func ctxUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	uid, _ := v.(string)
	return uid, uid != ""
}

// WebAuthn: DB user -> waUser
type waUser struct {
	user  models.User
	creds []webauthn.Credential
}

func (u *waUser) WebAuthnID() []byte                         { id, _ := uuid.Parse(u.user.ID); return id[:] }
func (u *waUser) WebAuthnName() string                       { return u.user.Email }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName }
func (u *waUser) WebAuthnIcon() string                       { return "" }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWaCred(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Authenticator: webauthn.Authenticator{
			AAGUID:       c.AAGUID,
			SignCount:    c.SignCount,
			CloneWarning: c.CloneWarning,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
	}
}

func (s *Srv) loadWAUserByID(ctx context.Context, id string) (*waUser, error) {
	u, err := s.Store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cs, _ := s.Store.LoadUserCredentials(ctx, u.ID)
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}, nil
}

func (s *Srv) loadWAUserByEmail(ctx context.Context, email string) (*waUser, error) {
	u, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	cs, _ := s.Store.LoadUserCredentials(ctx, u.ID)
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}, nil
}
