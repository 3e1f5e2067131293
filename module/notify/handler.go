package notify

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "LSProject/middleware/security"
	"LSProject/module/notify/model"
	"LSProject/module/notify/service"
	"LSProject/tools/errs"
)

type Handler struct {
	Svc *service.Service
}

func (h *Handler) Register(r gin.IRoutes, auth gin.HandlerFunc) {
	r.GET("/notifications", auth, h.Inbox)
	r.GET("/notifications/unread_count", auth, h.UnreadCount)
	r.POST("/notifications/:id/read", auth, h.MarkRead)
	r.POST("/notifications/read_all", auth, h.MarkAllRead)
	r.GET("/notifications/preferences", auth, h.GetPreferences)
	r.POST("/notifications/preferences", auth, h.UpdatePreferences)
}

func (h *Handler) Inbox(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	unreadOnly := c.Query("unread") == "true"
	list, err := h.Svc.Inbox(c.Request.Context(), uid, unreadOnly, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"notifications": list}})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	n, err := h.Svc.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"count": n}})
}

func (h *Handler) MarkRead(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	if err := h.Svc.MarkRead(c.Request.Context(), uid, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	n, err := h.Svc.MarkAllRead(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"marked": n}})
}

func (h *Handler) GetPreferences(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	p, err := h.Svc.GetPreferences(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var p model.Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	p.UserID = uid
	if err := h.Svc.UpdatePreferences(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.CodeOf(err) {
	case errs.RecordNotFound:
		status = http.StatusNotFound
	case errs.ArgsError:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"code": errs.CodeOf(err), "msg": errs.MsgOf(err)})
}
