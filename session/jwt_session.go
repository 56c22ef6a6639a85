package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrSessionInvalid = errors.New("session token invalid or expired")

// JWTSessionStore 无状态会话：cookie 里放的就是签名后的 JWT，
// 不依赖 Redis。代价是签发后改不了，Delete/RevokeAllForUser
// 只能等 exp 自然过期。单机部署或不想拉 Redis 时用。
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTSessionStore(secret []byte, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{secret: secret, ttl: ttl}
}

func (s *JWTSessionStore) Create(_ context.Context, userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTSessionStore) Get(_ context.Context, id string) (*AppSession, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(id, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrSessionInvalid
	}
	as := &AppSession{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		as.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		as.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return as, nil
}

// 无状态实现撤不了已签发的 token，登出靠前端清 cookie
func (s *JWTSessionStore) Delete(context.Context, string) error { return nil }

func (s *JWTSessionStore) RevokeAllForUser(context.Context, string) error { return nil }
