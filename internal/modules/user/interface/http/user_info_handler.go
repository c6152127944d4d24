package handler

import (
	"WrapDesk/internal/modules/user/application/dto/request"
	"WrapDesk/internal/modules/user/application/service"
	"WrapDesk/pkg/back"
	"WrapDesk/pkg/xerr"
	"WrapDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type UserInfoHandler struct {
	svc service.UserInfoService
}

func NewUserInfoHandler(svc service.UserInfoService) *UserInfoHandler {
	return &UserInfoHandler{svc: svc}
}

func (h *UserInfoHandler) Login(c *gin.Context) {
	var loginReq request.LoginRequest
	if err := c.BindJSON(&loginReq); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(loginReq)
	back.Result(c, data, err)
}

func (h *UserInfoHandler) Register(c *gin.Context) {
	var registerReq request.RegisterRequest
	if err := c.BindJSON(&registerReq); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Register(registerReq)
	back.Result(c, data, err)
}

// ListRecipients 返回可作为通知接收者的账号列表
func (h *UserInfoHandler) ListRecipients(c *gin.Context) {
	data, err := h.svc.ListRecipients()
	back.Result(c, data, err)
}
