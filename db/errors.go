package db

import "errors"

// 仓储层错误分四类，controller 按 errors.Is 翻 HTTP 码：
// 找不到 404，业务规则 / 资源重复 409，不变量被破坏 500。
// repo 实现包一层上下文（fmt.Errorf("%w: ...")），判定不受影响。
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBookNotFound   = errors.New("book not found")
	ErrRecordNotFound = errors.New("borrow record not found")
	ErrInviteNotFound = errors.New("invite not found")

	// 业务规则
	ErrBookNotAvailable  = errors.New("no copies available")
	ErrAlreadyBorrowed   = errors.New("user already borrowed this book")
	ErrNotBorrowed       = errors.New("no active borrow for this book")
	ErrCopiesOutstanding = errors.New("copies still on loan")
	ErrLastAdmin         = errors.New("cannot demote the last admin")
	ErrInviteNotUsable   = errors.New("invite expired or already used")

	// 资源重复
	ErrDuplicateISBN  = errors.New("isbn already registered")
	ErrDuplicateEmail = errors.New("email already registered")

	// 计数不变量被破坏（available 越界）。出现即 bug，
	// 只告警不自愈，绝不悄悄钳到合法区间。
	ErrCopyCountBroken = errors.New("book copy counters corrupted")
)
