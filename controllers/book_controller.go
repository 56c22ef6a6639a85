// controllers/book_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// 管理员建档。新书全部在馆：available = total
func (bc *BookController) CreateBook(c *gin.Context) {
	var in struct {
		ISBN        string `json:"isbn" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Author      string `json:"author" binding:"required"`
		TotalCopies int    `json:"totalCopies" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b := &models.Book{
		ID:              uuid.NewString(),
		ISBN:            in.ISBN,
		Title:           in.Title,
		Author:          in.Author,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
	}
	if err := bc.Store.CreateBook(c.Request.Context(), b); err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBookCreate, b.ID, "", fmt.Sprintf("isbn=%s copies=%d", b.ISBN, b.TotalCopies))
	c.JSON(http.StatusCreated, b)
}

// 列表（含可借册数，?available=1 只看可借）
func (bc *BookController) ListBooks(c *gin.Context) {
	q := db.BooksQuery{
		Q:             c.Query("q"),
		AvailableOnly: c.Query("available") == "1",
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := bc.Store.ListBooks(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (bc *BookController) GetBook(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	b, err := bc.Store.FindBookByID(c.Request.Context(), id)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// 改书目信息（书名/作者）。ISBN 建档后不动，册数走 /copies
func (bc *BookController) UpdateBook(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := bc.Store.UpdateBookDetails(c.Request.Context(), id, in.Title, in.Author)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBookUpdate, id, "", "")
	c.JSON(http.StatusOK, b)
}

// 调整馆藏册数。借出数不变，缩到比借出数还少会吃 409
func (bc *BookController) ResizeCopies(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		TotalCopies *int `json:"totalCopies" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if *in.TotalCopies < 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "totalCopies must be >= 0"})
		return
	}
	b, err := bc.Store.ResizeBookCopies(c.Request.Context(), id, *in.TotalCopies)
	if err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBookResize, id, "", fmt.Sprintf("totalCopies=%d", *in.TotalCopies))
	c.JSON(http.StatusOK, b)
}

// 下架。有册在外时拒绝，借阅历史不动
func (bc *BookController) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if err := bc.Store.DeleteBook(c.Request.Context(), id); err != nil {
		replyStoreErr(c, err)
		return
	}
	bc.audit(c, models.AuditBookDelete, id, "", "")
	c.JSON(http.StatusOK, app.H{"ok": true})
}
