package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 借出：一个事务 = 查重 → 条件扣减库存 → 新建记录。
// 库存扣减不走读-改-写，直接 UPDATE ... WHERE available_copies > 0，
// 并发借最后一册时只有一个请求扣得到。
func (r *Repo) BorrowBook(ctx context.Context, userID, bookID string, loanDays int) (*models.BorrowRecord, error) {
	if loanDays <= 0 {
		loanDays = models.DefaultLoanPeriodDays
	}
	var rec *models.BorrowRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 读者必须存在
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}

		// 2) 重复借阅先拦一道（并发下两个请求都过了这步的，
		//    由第 4 步的部分唯一索引兜底）
		if err := tx.Model(&models.BorrowRecord{}).
			Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.StatusBorrowed).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: book %s", ErrAlreadyBorrowed, bookID)
		}

		// 3) 条件扣减：available > 0 才扣得动
		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Model(&models.Book{}).Where("id = ?", bookID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
			}
			return fmt.Errorf("%w: book %s", ErrBookNotAvailable, bookID)
		}

		// 4) 落借阅记录。撞上唯一索引说明并发借重了，
		//    整个事务回滚，第 3 步扣掉的库存一并还原
		now := time.Now().UTC()
		l := &models.BorrowRecord{
			ID:         uuid.NewString(),
			UserID:     userID,
			BookID:     bookID,
			BorrowDate: now,
			DueDate:    models.DueDate(now, loanDays),
			Status:     models.StatusBorrowed,
		}
		if err := tx.Create(l).Error; err != nil {
			if uniqueViolation(err) {
				return fmt.Errorf("%w: book %s", ErrAlreadyBorrowed, bookID)
			}
			return err
		}
		rec = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// 归还：一个事务 = 条件关单 → 回补库存。
// 关单只认 status='BORROWED'，重复归还关不到任何行，报 ErrNotBorrowed。
func (r *Repo) ReturnBook(ctx context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// 1) 条件关单，RETURNING 读回整行（部分唯一索引保证至多一条）
		res := tx.Model(&rec).
			Clauses(clause.Returning{}).
			Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.StatusBorrowed).
			Updates(map[string]any{
				"status":      models.StatusReturned,
				"return_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 分辨：查无此人 / 查无此书 / 单纯没在借
			var n int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
			}
			if err := tx.Model(&models.Book{}).Where("id = ?", bookID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
			}
			return fmt.Errorf("%w: user %s book %s", ErrNotBorrowed, userID, bookID)
		}

		// 2) 回补库存，available < total 才加得动。加不动说明计数
		//    已经坏了（不变量被破坏），宁可 500 也不掩盖
		inc := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies < total_copies", bookID).
			Update("available_copies", gorm.Expr("available_copies + 1"))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			log.Printf("[invariant] return for book %s found no room to increment available_copies", bookID)
			return fmt.Errorf("%w: book %s", ErrCopyCountBroken, bookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListUserBorrows 某读者的借阅单，Overdue 读时算
func (r *Repo) ListUserBorrows(ctx context.Context, userID, status string) ([]models.BorrowRecord, error) {
	q := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("user_id = ?", userID).
		Order("borrow_date DESC")
	switch status {
	case "open":
		q = q.Where("status = ?", models.StatusBorrowed)
	case "returned":
		q = q.Where("status = ?", models.StatusReturned)
	}
	var recs []models.BorrowRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range recs {
		recs[i].Overdue = recs[i].IsOverdue(now)
	}
	return recs, nil
}

// BorrowRow 流通台账的一行：记录 + 读者 + 书目拼好给前端。
// 书目字段可空：书下架后流水还在。
type BorrowRow struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	UserEmail       string              `json:"userEmail"`
	UserDisplayName string              `json:"userDisplayName"`
	BookID          string              `json:"bookId"`
	BookISBN        *string             `json:"bookIsbn,omitempty"`
	BookTitle       *string             `json:"bookTitle,omitempty"`
	BorrowDate      time.Time           `json:"borrowDate"`
	DueDate         time.Time           `json:"dueDate"`
	ReturnDate      *time.Time          `json:"returnDate,omitempty"`
	Status          models.BorrowStatus `json:"status"`
	Overdue         bool                `json:"overdue"` // 由 SQL 计算
}

type BorrowsQuery struct {
	UserID string
	BookID string
	Status string // "", "open", "returned", "overdue"
	Page   int
	Size   int
}

type PagedBorrows struct {
	Total   int64       `json:"total"`
	Records []BorrowRow `json:"records"`
}

func (r *Repo) ListBorrows(ctx context.Context, q BorrowsQuery) (*PagedBorrows, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)

	// filter 每次重建链，Count 和 Scan 不共享 statement
	filtered := func() *gorm.DB {
		tx := db.
			Table(models.BorrowRecordTable+" br").
			Joins("JOIN "+models.UserTable+" u ON u.id = br.user_id").
			Joins("LEFT JOIN " + models.BookTable + " b ON b.id = br.book_id")
		if q.UserID != "" {
			tx = tx.Where("br.user_id = ?", q.UserID)
		}
		if q.BookID != "" {
			tx = tx.Where("br.book_id = ?", q.BookID)
		}
		switch q.Status {
		case "open":
			tx = tx.Where("br.status = ?", models.StatusBorrowed)
		case "returned":
			tx = tx.Where("br.status = ?", models.StatusReturned)
		case "overdue":
			tx = tx.Where("br.status = ? AND br.due_date < NOW()", models.StatusBorrowed)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []BorrowRow
	if err := filtered().
		Select(`
			br.id, br.user_id, br.book_id, br.borrow_date, br.due_date, br.return_date, br.status,
			u.email        AS user_email,
			u.display_name AS user_display_name,
			b.isbn         AS book_isbn,
			b.title        AS book_title,
			CASE WHEN br.status = 'BORROWED' AND br.due_date < NOW() THEN TRUE ELSE FALSE END AS overdue
		`).
		Order("br.borrow_date DESC").
		Offset(offset).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedBorrows{Total: total, Records: rows}, nil
}
