package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "LSProject/middleware/security"
	"LSProject/module/chat/service"
	"LSProject/tools/errs"
)

type Handler struct {
	Svc *service.Service
}

func (h *Handler) Register(r gin.IRoutes, auth gin.HandlerFunc) {
	r.GET("/chats", auth, h.GetChats)
	r.POST("/chats", auth, h.CreateChat)
	r.GET("/chats/:id/messages", auth, h.GetOldMessages)
	r.POST("/chats/:id/messages", auth, h.SendMessage)
	r.PATCH("/messages/:id", auth, h.EditMessage)
	r.POST("/chats/:id/members", auth, h.AddUsers)
	r.DELETE("/chats/:id/members/me", auth, h.Leave)
	r.PATCH("/chats/:id/name", auth, h.Rename)
	r.POST("/chats/:id/read", auth, h.MarkRead)
}

func (h *Handler) GetChats(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	previews, err := h.Svc.GetChatsWithPreview(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": previews})
}

func (h *Handler) CreateChat(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		Name      string   `json:"name"`
		MemberIDs []string `json:"member_ids"`
		IsGroup   bool     `json:"is_group"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	chat, err := h.Svc.CreateChat(c.Request.Context(), uid, req.Name, req.MemberIDs, req.IsGroup)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": chat})
}

// GetOldMessages ?cursor=<RFC3339>，空表示最新一页
func (h *Handler) GetOldMessages(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	page, hasMore, err := h.Svc.GetOldMessages(c.Request.Context(), c.Param("id"), uid, c.Query("cursor"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"messages": page, "has_more": hasMore}})
}

func (h *Handler) SendMessage(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	msg, err := h.Svc.SendMessage(c.Request.Context(), c.Param("id"), uid, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": msg})
}

func (h *Handler) EditMessage(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.Svc.EditMessage(c.Request.Context(), c.Param("id"), uid, req.Content); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) AddUsers(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.Svc.AddUsersToChat(c.Request.Context(), c.Param("id"), uid, req.UserIDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) Leave(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	if err := h.Svc.LeaveConversation(c.Request.Context(), c.Param("id"), uid); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) Rename(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.Svc.UpdateConversationName(c.Request.Context(), c.Param("id"), uid, req.Name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) MarkRead(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	if err := h.Svc.MarkRead(c.Request.Context(), c.Param("id"), uid); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.CodeOf(err) {
	case errs.AuthRequiredError:
		status = http.StatusForbidden
	case errs.RecordNotFound:
		status = http.StatusNotFound
	case errs.ArgsError, errs.ValidationFailedError:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"code": errs.CodeOf(err), "msg": errs.MsgOf(err)})
}
