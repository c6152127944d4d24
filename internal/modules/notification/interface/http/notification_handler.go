package handler

import (
	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/pkg/back"
	"WrapDesk/pkg/xerr"
	"WrapDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc       service.NotificationService
	exportSvc service.ExportService
}

func NewNotificationHandler(svc service.NotificationService, exportSvc service.ExportService) *NotificationHandler {
	return &NotificationHandler{svc: svc, exportSvc: exportSvc}
}

// List GET /Notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req request.ListNotificationsRequest
	if err := c.BindQuery(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.List(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}

// GetById GET /Notifications/:id
func (h *NotificationHandler) GetById(c *gin.Context) {
	data, err := h.svc.GetById(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

// Create POST /Notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req request.CreateNotificationRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Update PUT /Notifications/:id
func (h *NotificationHandler) Update(c *gin.Context) {
	var req request.UpdateNotificationRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	back.Result(c, data, err)
}

// Delete DELETE /Notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	back.Result(c, nil, err)
}

// MarkAsRead PUT /Notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	err := h.svc.MarkAsRead(c.Request.Context(), c.Param("id"))
	back.Result(c, nil, err)
}

// MarkManyAsRead PUT /Notifications/mark-read
func (h *NotificationHandler) MarkManyAsRead(c *gin.Context) {
	var req request.MarkManyReadRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.svc.MarkManyAsRead(c.Request.Context(), req.NotificationIds)
	back.Result(c, nil, err)
}

// MarkAllAsRead PUT /Notifications/mark-all-read
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	err := h.svc.MarkAllAsRead(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, nil, err)
}

// Stats GET /Notifications/stats
func (h *NotificationHandler) Stats(c *gin.Context) {
	data, err := h.svc.Stats(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, data, err)
}

// SendBulk POST /Notifications/bulk
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var req request.SendBulkRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.SendBulk(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Export GET /Notifications/export/:format
func (h *NotificationHandler) Export(c *gin.Context) {
	var req request.ListNotificationsRequest
	if err := c.BindQuery(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	file, err := h.exportSvc.Export(c.Request.Context(), c.GetString("uuid"), c.Param("format"), req)
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(200, file.ContentType, file.Data)
}
