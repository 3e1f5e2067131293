package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "LSProject/middleware/security"
	"LSProject/module/user/model"
	"LSProject/module/user/service"
	"LSProject/tools/errs"
)

type Handler struct {
	Svc *service.Service
}

func (h *Handler) Register(r gin.IRoutes, auth gin.HandlerFunc) {
	r.GET("/users/:id", h.GetProfile)
	r.GET("/users/:id/followers", h.Followers)
	r.GET("/users/:id/following", h.Following)
	r.PATCH("/me/profile", auth, h.UpdateProfile)
	r.POST("/users/:id/follow", auth, h.ToggleFollow)
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": u})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		fail(c, errs.ErrAuthRequired)
		return
	}
	var patch model.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.Svc.UpdateProfile(c.Request.Context(), uid, patch); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0})
}

func (h *Handler) ToggleFollow(c *gin.Context) {
	uid, ok := midsec.CurrentUserID(c)
	if !ok {
		fail(c, errs.ErrAuthRequired)
		return
	}
	following, err := h.Svc.ToggleFollow(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"following": following}})
}

func (h *Handler) Followers(c *gin.Context) {
	list, err := h.Svc.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
}

func (h *Handler) Following(c *gin.Context) {
	list, err := h.Svc.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
}

func fail(c *gin.Context, err error) {
	status := http.StatusOK
	switch errs.CodeOf(err) {
	case errs.AuthRequiredError:
		status = http.StatusUnauthorized
	case errs.RecordNotFound:
		status = http.StatusNotFound
	case errs.ArgsError, errs.ValidationFailedError:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"code": errs.CodeOf(err), "msg": errs.MsgOf(err)})
}
