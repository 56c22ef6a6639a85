// db/repo_books.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"gorm.io/gorm"
)

// Books

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	if err := r.DB.WithContext(ctx).Create(b).Error; err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateISBN, b.ISBN)
		}
		return err
	}
	return nil
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
		}
		return nil, err
	}
	return &b, nil
}

type BooksQuery struct {
	Q             string // 模糊搜索：title/author/isbn
	AvailableOnly bool
	Page          int
	Size          int
}

type PagedBooks struct {
	Total int64         `json:"total"`
	Books []models.Book `json:"books"`
}

func (r *Repo) ListBooks(ctx context.Context, q BooksQuery) (*PagedBooks, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Book{})
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ?", pat, pat, pat)
	}
	if q.AvailableOnly {
		tx = tx.Where("available_copies > 0")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var books []models.Book
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&books).Error; err != nil {
		return nil, err
	}
	return &PagedBooks{Total: total, Books: books}, nil
}

// UpdateBookDetails 只改书目信息，ISBN 与册数不在此处动：
// ISBN 建档后不可变，册数走 ResizeBookCopies。
func (r *Repo) UpdateBookDetails(ctx context.Context, id, title, author string) (*models.Book, error) {
	update := map[string]any{}
	if strings.TrimSpace(title) != "" {
		update["title"] = title
	}
	if strings.TrimSpace(author) != "" {
		update["author"] = author
	}
	if len(update) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Book{}).
			Where("id = ?", id).
			Updates(update)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
	}
	return r.FindBookByID(ctx, id)
}

// ResizeBookCopies 调整馆藏册数：delta 同步加到 available，
// 借出数保持不变。整个判定放在一条条件 UPDATE 里，
// 不做读-改-写，两个管理员并发改册数也不会把计数改穿。
func (r *Repo) ResizeBookCopies(ctx context.Context, id string, newTotal int) (*models.Book, error) {
	res := r.DB.WithContext(ctx).Exec(`
	  UPDATE `+models.BookTable+`
	  SET total_copies = ?,
	      available_copies = available_copies + (? - total_copies),
	      updated_at = NOW()
	  WHERE id = ?
	    AND available_copies + (? - total_copies) >= 0
	`, newTotal, newTotal, id, newTotal)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		b, err := r.FindBookByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d on loan, cannot shrink to %d", ErrCopiesOutstanding, b.OnLoan(), newTotal)
	}
	return r.FindBookByID(ctx, id)
}

// DeleteBook 下架书目。还有在外册数时拒绝，借阅历史不随书删除。
func (r *Repo) DeleteBook(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Exec(`
	  DELETE FROM `+models.BookTable+`
	  WHERE id = ? AND available_copies = total_copies
	`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindBookByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: book %s", ErrCopiesOutstanding, id)
	}
	return nil
}
