package session

import "context"

// Sessions 登录会话的统一口子，SESSION_BACKEND 选实现：
// redis（缺省，可吊销）或 jwt（无状态，不依赖 Redis）。
// Create 返回的 id 就是种进 cookie 的值。
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, id string) (*AppSession, error)
	Delete(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

var _ Sessions = (*AppSessionStore)(nil)
var _ Sessions = (*JWTSessionStore)(nil)
