package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// Store 暂存 WebAuthn 挑战数据，begin/finish 两步之间落 Redis，
// TTL 到了挑战自动作废。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

func regKey(email string) string { return fmt.Sprintf("lib:webauthn:reg:%s", email) }
func authKey(sid string) string  { return fmt.Sprintf("lib:webauthn:auth:%s", sid) }

func (s *Store) SaveReg(ctx context.Context, email string, sd *webauthn.SessionData) error {
	b, _ := json.Marshal(sd)
	return s.rdb.Set(ctx, regKey(email), b, s.ttl).Err()
}

func (s *Store) LoadReg(ctx context.Context, email string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, regKey(email)).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (s *Store) DelReg(ctx context.Context, email string) {
	_ = s.rdb.Del(ctx, regKey(email)).Err()
}

func (s *Store) SaveAuth(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	b, _ := json.Marshal(sd)
	return s.rdb.Set(ctx, authKey(sid), b, s.ttl).Err()
}

func (s *Store) LoadAuth(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, authKey(sid)).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (s *Store) DelAuth(ctx context.Context, sid string) { _ = s.rdb.Del(ctx, authKey(sid)).Err() }

// 凭邀请 token 注册时，挑战随 token 走，不跟邮箱绑定

func regTokenKey(token string) string { return fmt.Sprintf("lib:webauthn:reg:inv:%s", token) }

func (s *Store) SaveRegByToken(ctx context.Context, token string, sd *webauthn.SessionData) error {
	b, _ := json.Marshal(sd)
	return s.rdb.Set(ctx, regTokenKey(token), b, s.ttl).Err()
}

func (s *Store) LoadRegByToken(ctx context.Context, token string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, regTokenKey(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (s *Store) DelRegByToken(ctx context.Context, token string) {
	_ = s.rdb.Del(ctx, regTokenKey(token)).Err()
}
