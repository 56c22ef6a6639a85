package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/google/uuid"
)

// MemoryStore 全内存实现，handler 测试与 DEV_NO_DB 模式用。
// 行为对齐 *Repo：同一组哨兵错误、同一套判定顺序，
// 一把大锁代替数据库事务。
type MemoryStore struct {
	mu sync.Mutex

	users  map[string]*models.User // key: id
	emails map[string]string       // key: lower(email) -> id
	creds  map[string]*models.Credential

	invites   map[string]*models.Invite // key: token
	inviteSeq uint

	books map[string]*models.Book // key: id
	isbns map[string]string       // key: isbn -> id

	records map[string]*models.BorrowRecord
	audit   []models.AuditLog

	// Now 测试拨时钟用，缺省走系统时间
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   map[string]*models.User{},
		emails:  map[string]string{},
		creds:   map[string]*models.Credential{},
		invites: map[string]*models.Invite{},
		books:   map[string]*models.Book{},
		isbns:   map[string]string{},
		records: map[string]*models.BorrowRecord{},
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Users

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := m.emails[email]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, u.Email)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := m.Now()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.users[u.ID] = &cp
	m.emails[email] = u.ID
	return nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MemoryStore) ListUsers(_ context.Context, q string, page, size int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(q))
	var all []models.User
	for _, u := range m.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.DisplayName), needle) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	all = pageSlice(all, page, size)
	return ListUsersResult{Users: all, Total: total}, nil
}

func (m *MemoryStore) UpdateUserProfile(_ context.Context, id, displayName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	u.DisplayName = displayName
	u.UpdatedAt = m.Now()
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) SetUserPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	u.PasswordHash = &hash
	u.UpdatedAt = m.Now()
	return nil
}

func (m *MemoryStore) SetUserRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	if u.Role == models.RoleAdmin && role != models.RoleAdmin && m.countAdminsLocked() <= 1 {
		return nil, ErrLastAdmin
	}
	u.Role = role
	u.UpdatedAt = m.Now()
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) countAdminsLocked() int64 {
	var n int64
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

func (m *MemoryStore) CountAdmins(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countAdminsLocked(), nil
}

func (m *MemoryStore) TouchUserLogin(_ context.Context, userID, ip, ua string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	now := m.Now()
	u.LastLoginAt = &now
	u.LastSeenAt = &now
	u.LoginCount++
	u.LastLoginIP = ip
	u.LastLoginUA = ua
	return nil
}

func (m *MemoryStore) TouchUserSeen(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	now := m.Now()
	u.LastSeenAt = &now
	return nil
}

// Credentials

func (m *MemoryStore) AddCredential(_ context.Context, c *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.creds[string(c.CredentialID)] = &cp
	return nil
}

func (m *MemoryStore) LoadUserCredentials(_ context.Context, userID string) ([]models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cs []models.Credential
	for _, c := range m.creds {
		if c.UserID == userID {
			cs = append(cs, *c)
		}
	}
	return cs, nil
}

func (m *MemoryStore) UpdateCredentialCounter(_ context.Context, credID []byte, newCount uint32, cloneWarn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.creds[string(credID)]; ok {
		c.SignCount = newCount
		c.CloneWarning = cloneWarn
	}
	return nil
}

func (m *MemoryStore) TouchCredentialUsed(_ context.Context, credID []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.creds[string(credID)]; ok {
		now := m.Now()
		c.LastUsedAt = &now
	}
	return nil
}

func (m *MemoryStore) FindUserByCredentialID(_ context.Context, credID []byte) (*models.User, *models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[string(credID)]
	if !ok {
		return nil, nil, fmt.Errorf("credential not registered")
	}
	u, ok := m.users[c.UserID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, c.UserID)
	}
	ucp, ccp := *u, *c
	return &ucp, &ccp, nil
}

// Invites

func (m *MemoryStore) CreateInvite(_ context.Context, inv *models.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inviteSeq++
	inv.ID = m.inviteSeq
	inv.CreatedAt = m.Now()
	cp := *inv
	m.invites[inv.Token] = &cp
	return nil
}

func (m *MemoryStore) FindInviteByToken(_ context.Context, token string) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MemoryStore) ConsumeInvite(_ context.Context, token string, now time.Time) (*models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	if !inv.Usable(now) {
		return nil, fmt.Errorf("%w: %s", ErrInviteNotUsable, token)
	}
	at := now
	inv.UsedAt = &at
	cp := *inv
	return &cp, nil
}

func (m *MemoryStore) ListInvites(_ context.Context) ([]models.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var invs []models.Invite
	for _, inv := range m.invites {
		invs = append(invs, *inv)
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].CreatedAt.After(invs[j].CreatedAt) })
	return invs, nil
}

// Books

func (m *MemoryStore) CreateBook(_ context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.isbns[b.ISBN]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateISBN, b.ISBN)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := m.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	m.books[b.ID] = &cp
	m.isbns[b.ISBN] = b.ID
	return nil
}

func (m *MemoryStore) FindBookByID(_ context.Context, id string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) FindBookByISBN(_ context.Context, isbn string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.isbns[isbn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	cp := *m.books[id]
	return &cp, nil
}

func (m *MemoryStore) ListBooks(_ context.Context, q BooksQuery) (*PagedBooks, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(q.Q))
	var all []models.Book
	for _, b := range m.books {
		if needle != "" &&
			!strings.Contains(strings.ToLower(b.Title), needle) &&
			!strings.Contains(strings.ToLower(b.Author), needle) &&
			!strings.Contains(strings.ToLower(b.ISBN), needle) {
			continue
		}
		if q.AvailableOnly && b.AvailableCopies == 0 {
			continue
		}
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	all = pageSlice(all, q.Page, q.Size)
	return &PagedBooks{Total: total, Books: all}, nil
}

func (m *MemoryStore) UpdateBookDetails(_ context.Context, id, title, author string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if strings.TrimSpace(title) != "" {
		b.Title = title
	}
	if strings.TrimSpace(author) != "" {
		b.Author = author
	}
	b.UpdatedAt = m.Now()
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) ResizeBookCopies(_ context.Context, id string, newTotal int) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	newAvail := b.AvailableAfterResize(newTotal)
	if newAvail < 0 {
		return nil, fmt.Errorf("%w: %d on loan, cannot shrink to %d", ErrCopiesOutstanding, b.OnLoan(), newTotal)
	}
	b.TotalCopies = newTotal
	b.AvailableCopies = newAvail
	b.UpdatedAt = m.Now()
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if b.AvailableCopies != b.TotalCopies {
		return fmt.Errorf("%w: book %s", ErrCopiesOutstanding, id)
	}
	delete(m.isbns, b.ISBN)
	delete(m.books, id)
	return nil
}

// Circulation

func (m *MemoryStore) BorrowBook(_ context.Context, userID, bookID string, loanDays int) (*models.BorrowRecord, error) {
	if loanDays <= 0 {
		loanDays = models.DefaultLoanPeriodDays
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	for _, rec := range m.records {
		if rec.UserID == userID && rec.BookID == bookID && rec.Status == models.StatusBorrowed {
			return nil, fmt.Errorf("%w: book %s", ErrAlreadyBorrowed, bookID)
		}
	}
	b, ok := m.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	if b.AvailableCopies <= 0 {
		return nil, fmt.Errorf("%w: book %s", ErrBookNotAvailable, bookID)
	}

	b.AvailableCopies--
	now := m.Now()
	rec := &models.BorrowRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    models.DueDate(now, loanDays),
		Status:     models.StatusBorrowed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.records[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) ReturnBook(_ context.Context, userID, bookID string) (*models.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var open *models.BorrowRecord
	for _, rec := range m.records {
		if rec.UserID == userID && rec.BookID == bookID && rec.Status == models.StatusBorrowed {
			open = rec
			break
		}
	}
	if open == nil {
		if _, ok := m.users[userID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		if _, ok := m.books[bookID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
		return nil, fmt.Errorf("%w: user %s book %s", ErrNotBorrowed, userID, bookID)
	}

	// 校验全过再落两处变更，对齐 Repo 的事务语义
	b, ok := m.books[bookID]
	if !ok || b.AvailableCopies >= b.TotalCopies {
		return nil, fmt.Errorf("%w: book %s", ErrCopyCountBroken, bookID)
	}

	now := m.Now()
	open.Status = models.StatusReturned
	open.ReturnDate = &now
	open.UpdatedAt = now
	b.AvailableCopies++

	cp := *open
	return &cp, nil
}

func (m *MemoryStore) ListUserBorrows(_ context.Context, userID, status string) ([]models.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	var recs []models.BorrowRecord
	for _, rec := range m.records {
		if rec.UserID != userID {
			continue
		}
		switch status {
		case "open":
			if rec.Status != models.StatusBorrowed {
				continue
			}
		case "returned":
			if rec.Status != models.StatusReturned {
				continue
			}
		}
		cp := *rec
		cp.Overdue = cp.IsOverdue(now)
		recs = append(recs, cp)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].BorrowDate.After(recs[j].BorrowDate) })
	return recs, nil
}

func (m *MemoryStore) ListBorrows(_ context.Context, q BorrowsQuery) (*PagedBorrows, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	var rows []BorrowRow
	for _, rec := range m.records {
		if q.UserID != "" && rec.UserID != q.UserID {
			continue
		}
		if q.BookID != "" && rec.BookID != q.BookID {
			continue
		}
		overdue := rec.IsOverdue(now)
		switch q.Status {
		case "open":
			if rec.Status != models.StatusBorrowed {
				continue
			}
		case "returned":
			if rec.Status != models.StatusReturned {
				continue
			}
		case "overdue":
			if !overdue {
				continue
			}
		}

		row := BorrowRow{
			ID:         rec.ID,
			UserID:     rec.UserID,
			BookID:     rec.BookID,
			BorrowDate: rec.BorrowDate,
			DueDate:    rec.DueDate,
			ReturnDate: rec.ReturnDate,
			Status:     rec.Status,
			Overdue:    overdue,
		}
		if u, ok := m.users[rec.UserID]; ok {
			row.UserEmail = u.Email
			row.UserDisplayName = u.DisplayName
		}
		if b, ok := m.books[rec.BookID]; ok {
			isbn, title := b.ISBN, b.Title
			row.BookISBN = &isbn
			row.BookTitle = &title
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BorrowDate.After(rows[j].BorrowDate) })

	total := int64(len(rows))
	rows = pageSlice(rows, q.Page, q.Size)
	return &PagedBorrows{Total: total, Records: rows}, nil
}

// Audit

func (m *MemoryStore) AppendAudit(_ context.Context, e *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = m.Now()
	m.audit = append(m.audit, *e)
	return nil
}

func (m *MemoryStore) ListAudit(_ context.Context, page, size int) ([]models.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	logs := make([]models.AuditLog, len(m.audit))
	copy(logs, m.audit)
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })

	total := int64(len(logs))
	return pageSlice(logs, page, size), total, nil
}

func pageSlice[T any](s []T, page, size int) []T {
	lo := (page - 1) * size
	if lo >= len(s) {
		return nil
	}
	hi := lo + size
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}
