// controllers/borrow_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// 自助借书
func (bc *BorrowController) Borrow(c *gin.Context) {
	bookID := c.Param("id")
	if bookID == "" {
		c.JSON(400, app.H{"error": "missing book id"})
		return
	}
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}

	rec, err := bc.Store.BorrowBook(c.Request.Context(), uid, bookID, bc.Cfg.LoanDays)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBorrow, bookID, uid, "")
	c.JSON(http.StatusCreated, rec)
}

// 自助还书。没在借的书还不了（409），不做幂等放行
func (bc *BorrowController) Return(c *gin.Context) {
	bookID := c.Param("id")
	if bookID == "" {
		c.JSON(400, app.H{"error": "missing book id"})
		return
	}
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(401, app.H{"error": "unauthorized"})
		return
	}

	rec, err := bc.Store.ReturnBook(c.Request.Context(), uid, bookID)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditReturn, bookID, uid, "")
	c.JSON(http.StatusOK, rec)
}

// 自己的借阅单 ?status=open|returned
func (bc *BorrowController) MyBorrows(c *gin.Context) {
	uid, ok := ctxUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	recs, err := bc.Store.ListUserBorrows(c.Request.Context(), uid, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

// 流通台账（管理员）?userId=&bookId=&status=open|returned|overdue
func (bc *BorrowController) AdminListBorrows(c *gin.Context) {
	q := db.BorrowsQuery{
		UserID: c.Query("userId"),
		BookID: c.Query("bookId"),
		Status: c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := bc.Store.ListBorrows(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// 柜台代办：书可以给 bookId 也可以直接扫 ISBN
func (bc *BorrowController) resolveBookID(ctx context.Context, bookID, isbn string) (string, error) {
	if bookID != "" {
		return bookID, nil
	}
	b, err := bc.Store.FindBookByISBN(ctx, isbn)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

type deskReq struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
	BookID    string `json:"bookId"`
	ISBN      string `json:"isbn"`
}

func (bc *BorrowController) AdminBorrow(c *gin.Context) {
	var req deskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.BookID == "" && req.ISBN == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "bookId or isbn required"})
		return
	}

	ctx := c.Request.Context()
	user, err := bc.Store.FindUserByEmail(ctx, req.UserEmail)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bookID, err := bc.resolveBookID(ctx, req.BookID, req.ISBN)
	if err != nil {
		replyStoreErr(c, err)
		return
	}

	rec, err := bc.Store.BorrowBook(ctx, user.ID, bookID, bc.Cfg.LoanDays)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBorrow, bookID, user.ID, "desk")
	c.JSON(http.StatusCreated, rec)
}

func (bc *BorrowController) AdminReturn(c *gin.Context) {
	var req deskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.BookID == "" && req.ISBN == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "bookId or isbn required"})
		return
	}

	ctx := c.Request.Context()
	user, err := bc.Store.FindUserByEmail(ctx, req.UserEmail)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bookID, err := bc.resolveBookID(ctx, req.BookID, req.ISBN)
	if err != nil {
		replyStoreErr(c, err)
		return
	}

	rec, err := bc.Store.ReturnBook(ctx, user.ID, bookID)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditReturn, bookID, user.ID, "desk")
	c.JSON(http.StatusOK, rec)
}
