package db

import (
	"context"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"
)

// Store 仓储门面。生产用 *Repo (Postgres/GORM)，handler 测试用
// *MemoryStore，两边返回同一组哨兵错误，controller 不感知实现。
type Store interface {
	// 用户
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error)
	UpdateUserProfile(ctx context.Context, id, displayName string) (*models.User, error)
	SetUserPassword(ctx context.Context, id, hash string) error
	SetUserRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	CountAdmins(ctx context.Context) (int64, error)
	TouchUserLogin(ctx context.Context, userID, ip, ua string) error
	TouchUserSeen(ctx context.Context, userID string) error

	// 通行密钥凭据
	AddCredential(ctx context.Context, c *models.Credential) error
	LoadUserCredentials(ctx context.Context, userID string) ([]models.Credential, error)
	UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32, cloneWarn bool) error
	TouchCredentialUsed(ctx context.Context, credID []byte) error
	FindUserByCredentialID(ctx context.Context, credID []byte) (*models.User, *models.Credential, error)

	// 邀请
	CreateInvite(ctx context.Context, inv *models.Invite) error
	FindInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	ConsumeInvite(ctx context.Context, token string, now time.Time) (*models.Invite, error)
	ListInvites(ctx context.Context) ([]models.Invite, error)

	// 书目
	CreateBook(ctx context.Context, b *models.Book) error
	FindBookByID(ctx context.Context, id string) (*models.Book, error)
	FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	ListBooks(ctx context.Context, q BooksQuery) (*PagedBooks, error)
	UpdateBookDetails(ctx context.Context, id, title, author string) (*models.Book, error)
	ResizeBookCopies(ctx context.Context, id string, newTotal int) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error

	// 流通
	BorrowBook(ctx context.Context, userID, bookID string, loanDays int) (*models.BorrowRecord, error)
	ReturnBook(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error)
	ListUserBorrows(ctx context.Context, userID, status string) ([]models.BorrowRecord, error)
	ListBorrows(ctx context.Context, q BorrowsQuery) (*PagedBorrows, error)

	// 审计
	AppendAudit(ctx context.Context, e *models.AuditLog) error
	ListAudit(ctx context.Context, page, size int) ([]models.AuditLog, int64, error)
}

var _ Store = (*Repo)(nil)
var _ Store = (*MemoryStore)(nil)
