// controllers/webauthn_controller.go
package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

func (s *Srv) WhoAmI(c *app.Ctx) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}
	u, err := s.Store.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}
	isAdmin, _ := c.Get("isAdmin")
	c.JSON(200, app.H{"user": u, "isAdmin": isAdmin})
}

// ===== 注册（邀请制） =====

// 邀请对应的账号，没有就按邀请里的角色建一个
func (s *Srv) userForInvite(ctx context.Context, inv *models.Invite) (*models.User, error) {
	u, err := s.Store.FindUserByEmail(ctx, inv.Email)
	if errors.Is(err, db.ErrUserNotFound) {
		u = &models.User{
			ID:          uuid.NewString(),
			Email:       inv.Email,
			DisplayName: inv.Email,
			Role:        inv.Role,
		}
		if err := s.Store.CreateUser(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	return u, err
}

func (s *Srv) BeginRegistration(c *gin.Context) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	inv, err := s.Store.FindInviteByToken(ctx, in.InviteToken)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(403, app.H{"error": "invalid or expired invite"})
		return
	}

	u, err := s.userForInvite(ctx, inv)
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}

	wUser, _ := s.loadWAUserByID(ctx, u.ID)
	opts, sd, err := s.WA.BeginRegistration(
		wUser,
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	)
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}

	if err := s.Ceremony.SaveRegByToken(ctx, in.InviteToken, sd); err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	c.JSON(200, app.H{"opts": opts})
}

func (s *Srv) FinishRegistration(c *gin.Context) {
	token := c.Query("inviteToken")
	if token == "" {
		c.JSON(400, app.H{"error": "missing inviteToken"})
		return
	}

	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()
	inv, err := s.Store.FindInviteByToken(ctx, token)
	if err != nil || !inv.Usable(time.Now()) {
		c.JSON(403, app.H{"error": "invalid or expired invite"})
		return
	}
	wUser, err := s.loadWAUserByEmail(ctx, inv.Email)
	if err != nil {
		c.JSON(404, app.H{"error": "user not found"})
		return
	}

	sd, err := s.Ceremony.LoadRegByToken(ctx, token)
	if err != nil {
		c.JSON(400, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(400, app.H{"error": err.Error()})
		return
	}

	if err := s.Store.AddCredential(ctx, &models.Credential{
		UserID:          wUser.user.ID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		CloneWarning:    cred.Authenticator.CloneWarning,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}); err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	s.Ceremony.DelRegByToken(ctx, token)
	_, _ = s.Store.ConsumeInvite(ctx, token, time.Now())

	// 注册即登录
	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(500, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(200, app.H{"ok": true, "email": wUser.user.Email})
}

// ===== 添加新凭据（已登录） =====

func (s *Srv) BeginAddCredential(c *gin.Context) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}

	opts, sd, err := s.WA.BeginRegistration(
		wUser,
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	)
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}

	if err := s.Ceremony.SaveReg(ctx, wUser.user.Email, sd); err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	c.JSON(200, app.H{"opts": opts})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}

	sd, err := s.Ceremony.LoadReg(ctx, wUser.user.Email)
	if err != nil {
		c.JSON(400, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(400, app.H{"error": err.Error()})
		return
	}

	if err := s.Store.AddCredential(ctx, &models.Credential{
		UserID:          wUser.user.ID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		CloneWarning:    cred.Authenticator.CloneWarning,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}); err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	s.Ceremony.DelReg(ctx, wUser.user.Email)
	c.JSON(200, app.H{"ok": true})
}

// ===== 登录 =====

type loginBeginReq struct {
	Email        string `json:"email"`
	Discoverable bool   `json:"discoverable"`
}
type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	if req.Discoverable {
		opts, sd, err = s.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, err2 := s.loadWAUserByEmail(ctx, req.Email)
		if err2 != nil {
			c.JSON(404, app.H{"error": "user not found"})
			return
		}
		opts, sd, err = s.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}

	sid := uuid.NewString()
	if err := s.Ceremony.SaveAuth(ctx, sid, sd); err != nil {
		c.JSON(500, app.H{"error": err.Error()})
		return
	}
	c.JSON(200, loginBeginResp{Options: opts, SessionID: sid})
}

func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(400, app.H{"error": "missing sessionId"})
		return
	}
	ip, ua := c.ClientIP(), c.Request.UserAgent()

	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()
	sd, err := s.Ceremony.LoadAuth(ctx, sid)
	if err != nil {
		c.JSON(400, app.H{"error": "session expired or invalid"})
		return
	}

	var userID string
	if email := c.Query("email"); email != "" {
		wUser, err := s.loadWAUserByEmail(ctx, email)
		if err != nil {
			c.JSON(404, app.H{"error": "user not found"})
			return
		}
		cred, err := s.WA.FinishLogin(wUser, *sd, c.Request)
		if err != nil {
			c.JSON(401, app.H{"error": err.Error()})
			return
		}
		userID = wUser.user.ID
		_ = s.Store.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning)
		_ = s.Store.TouchCredentialUsed(ctx, cred.ID)
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, err := s.Store.FindUserByCredentialID(ctx, rawID)
			if err != nil {
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			w, _ := s.loadWAUserByID(ctx, u.ID)
			return w, nil
		}
		user, cred, err := s.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if err != nil {
			c.JSON(401, app.H{"error": err.Error()})
			return
		}
		userID = user.(*waUser).user.ID
		_ = s.Store.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning)
		_ = s.Store.TouchCredentialUsed(ctx, cred.ID)
	}
	s.Ceremony.DelAuth(ctx, sid)

	if err := s.issueSession(ctx, c.Writer, userID, ip, ua); err != nil {
		c.JSON(500, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(200, app.H{"ok": true, "redirect": "/dashboard"})
}
