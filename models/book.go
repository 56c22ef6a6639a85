// models/book.go
package models

import "time"

const BookTable = "lib_books"

// Book 馆藏书目：同一 ISBN 一条记录，TotalCopies 为馆藏册数，
// AvailableCopies 为当前在馆可借册数。
// 不变量：0 <= available_copies <= total_copies（除 CHECK 约束外，
// 借还一律走条件 UPDATE，不做读-改-写）
type Book struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	ISBN   string `gorm:"size:20;uniqueIndex;not null" json:"isbn"`
	Title  string `gorm:"size:300;not null" json:"title"`
	Author string `gorm:"size:255;not null" json:"author"`

	TotalCopies     int `gorm:"not null" json:"totalCopies"`
	AvailableCopies int `gorm:"not null;check:chk_lib_books_copies,available_copies >= 0 AND available_copies <= total_copies" json:"availableCopies"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return BookTable }

// IsAvailable 是否还有可借册数
func (b *Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// OnLoan 当前借出册数 = total - available
func (b *Book) OnLoan() int { return b.TotalCopies - b.AvailableCopies }

// AvailableAfterResize 管理员调整馆藏册数后应有的可借数：
// 同一 delta 同步到 available，保持借出数不变。结果 < 0 说明
// 新册数低于当前借出数，调用方必须拒绝。
func (b *Book) AvailableAfterResize(newTotal int) int {
	return b.AvailableCopies + (newTotal - b.TotalCopies)
}
