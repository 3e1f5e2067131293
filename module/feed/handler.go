package feed

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "LSProject/middleware/security"
	"LSProject/module/feed/model"
	"LSProject/module/feed/service"
	"LSProject/tools/errs"
)

type Handler struct {
	Svc *service.Service
}

func (h *Handler) Register(r gin.IRoutes, auth gin.HandlerFunc) {
	r.GET("/feed", auth, h.GetFeed)
	r.POST("/posts", auth, h.CreatePost)
	r.DELETE("/posts/:id", auth, h.DeletePost)
	r.GET("/posts/:id/comments", auth, h.Comments)
	r.POST("/posts/:id/comments", auth, h.CreateComment)
	r.POST("/posts/:id/like", auth, h.LikePost)
	r.POST("/posts/:id/comments/:cid/like", auth, h.LikeComment)
	r.POST("/posts/:id/report", auth, h.Report)
}

func (h *Handler) GetFeed(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := model.FeedFilter{
		Category: c.Query("category"),
		Cursor:   c.Query("cursor"),
		Limit:    limit,
	}
	posts, next, err := h.Svc.GetFeed(c.Request.Context(), uid, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"posts": posts, "next_cursor": next}})
}

func (h *Handler) CreatePost(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var v model.CreatePostValues
	if err := c.ShouldBindJSON(&v); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	post, err := h.Svc.CreatePost(c.Request.Context(), uid, v)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": post})
}

func (h *Handler) DeletePost(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	if err := h.Svc.DeletePost(c.Request.Context(), uid, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) Comments(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	list, err := h.Svc.Comments(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"comments": list}})
}

func (h *Handler) CreateComment(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var v model.CreateCommentValues
	if err := c.ShouldBindJSON(&v); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	comment, err := h.Svc.CreateComment(c.Request.Context(), uid, c.Param("id"), v)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": comment})
}

func (h *Handler) LikePost(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	liked, err := h.Svc.LikePost(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"is_liked": liked}})
}

func (h *Handler) LikeComment(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	liked, err := h.Svc.LikeComment(c.Request.Context(), uid, c.Param("id"), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"is_liked": liked}})
}

func (h *Handler) Report(c *gin.Context) {
	uid, _ := midsec.CurrentUserID(c)
	var req struct {
		CommentID string `json:"comment_id"`
		Type      string `json:"type"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	report, err := h.Svc.CreateReport(c.Request.Context(), uid, c.Param("id"), req.CommentID,
		model.CreateReportValues{Type: req.Type, Reason: req.Reason})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": report})
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.CodeOf(err) {
	case errs.AuthRequiredError:
		status = http.StatusUnauthorized
	case errs.RecordNotFound:
		status = http.StatusNotFound
	case errs.ArgsError, errs.ValidationFailedError:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"code": errs.CodeOf(err), "msg": errs.MsgOf(err)})
}
