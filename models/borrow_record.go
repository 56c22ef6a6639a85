// models/borrow_record.go
package models

import "time"

const BorrowRecordTable = "lib_borrow_records"

// BorrowStatus 借阅流转状态，只有两态：在借 / 已还
type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
)

// DefaultLoanPeriodDays 默认借期（自然日），可用 LOAN_PERIOD_DAYS 覆盖
const DefaultLoanPeriodDays = 7

// DueDate 按自然日推算应还日期（不是 7*24h，跨夏令时也按日历走）
func DueDate(borrowedAt time.Time, loanDays int) time.Time {
	return borrowedAt.AddDate(0, 0, loanDays)
}

// BorrowRecord 一次借阅的完整生命周期。还书后记录保留做历史，
// 不回收：同一 (user, book) 允许多条 RETURNED，但最多一条 BORROWED
//（靠 status='BORROWED' 上的部分唯一索引兜底，见 db.Migrate）。
//
// 故意不建外键：书目被下架删除后借阅历史照样可查。
type BorrowRecord struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index:idx_lib_borrow_user" json:"userId"`
	BookID string `gorm:"type:uuid;not null;index:idx_lib_borrow_book" json:"bookId"`

	BorrowDate time.Time    `gorm:"not null;index" json:"borrowDate"`
	DueDate    time.Time    `gorm:"not null" json:"dueDate"`
	ReturnDate *time.Time   `json:"returnDate,omitempty"`
	Status     BorrowStatus `gorm:"size:16;not null;index" json:"status"`

	// Overdue 读时计算，绝不落库（库里存了就会腐烂）
	Overdue bool `gorm:"-" json:"overdue"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRecord) TableName() string { return BorrowRecordTable }

// IsOverdue 在借且已过应还时间。已还记录永远不算逾期。
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.Status == StatusBorrowed && now.After(r.DueDate)
}
