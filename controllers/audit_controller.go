package controllers

import (
	"net/http"
	"strconv"

	"github.com/MPfria02/Library-Management-System-sub001/app"

	"github.com/gin-gonic/gin"
)

type AuditController struct{ *Srv }

func NewAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// GET /admin/audit?page=&size=  流水倒序
func (ac *AuditController) ListAudit(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	logs, total, err := ac.Store.ListAudit(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"total": total, "entries": logs})
}
