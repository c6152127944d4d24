package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/application/dto/respond"
	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/pkg/xerr"
)

// stubNotifService 按需覆写用到的方法，其余走 panic 以暴露误用
type stubNotifService struct {
	service.NotificationService
	listFn    func(ctx context.Context, recipientId string, req request.ListNotificationsRequest) (*respond.ListNotificationsRespond, error)
	getFn     func(ctx context.Context, id string) (*respond.NotificationItem, error)
	markFn    func(ctx context.Context, id string) error
	deleteErr error
}

func (s *stubNotifService) List(ctx context.Context, recipientId string, req request.ListNotificationsRequest) (*respond.ListNotificationsRespond, error) {
	return s.listFn(ctx, recipientId, req)
}

func (s *stubNotifService) GetById(ctx context.Context, id string) (*respond.NotificationItem, error) {
	return s.getFn(ctx, id)
}

func (s *stubNotifService) MarkAsRead(ctx context.Context, id string) error {
	return s.markFn(ctx, id)
}

func (s *stubNotifService) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

type stubExportService struct {
	file *service.ExportFile
	err  error
}

func (s *stubExportService) Export(ctx context.Context, recipientId, format string, req request.ListNotificationsRequest) (*service.ExportFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.file, nil
}

func newTestRouter(svc service.NotificationService, exportSvc service.ExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 模拟认证中间件注入的用户标识
	r.Use(func(c *gin.Context) {
		c.Set("uuid", "U1")
	})
	h := NewNotificationHandler(svc, exportSvc)
	r.GET("/Notifications", h.List)
	r.GET("/Notifications/stats", h.Stats)
	r.GET("/Notifications/export/:format", h.Export)
	r.GET("/Notifications/:id", h.GetById)
	r.POST("/Notifications", h.Create)
	r.PUT("/Notifications/:id/read", h.MarkAsRead)
	r.DELETE("/Notifications/:id", h.Delete)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPassesRecipientAndFilters(t *testing.T) {
	var gotRecipient string
	var gotReq request.ListNotificationsRequest
	svc := &stubNotifService{
		listFn: func(ctx context.Context, recipientId string, req request.ListNotificationsRequest) (*respond.ListNotificationsRespond, error) {
			gotRecipient = recipientId
			gotReq = req
			return &respond.ListNotificationsRespond{
				Items:    []respond.NotificationItem{{Id: "N1", Title: "标题"}},
				Total:    1,
				Page:     1,
				PageSize: 20,
			}, nil
		},
	}
	r := newTestRouter(svc, &stubExportService{})

	w := doRequest(r, http.MethodGet, "/Notifications?page=1&pageSize=20&isRead=false&type=order", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "U1", gotRecipient)
	assert.Equal(t, "order", gotReq.Type)
	require.NotNil(t, gotReq.IsRead)
	assert.False(t, *gotReq.IsRead)

	var resp struct {
		Code int                              `json:"code"`
		Data respond.ListNotificationsRespond `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, xerr.OK, resp.Code)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "N1", resp.Data.Items[0].Id)
}

func TestGetByIdNotFoundStatus(t *testing.T) {
	svc := &stubNotifService{
		getFn: func(ctx context.Context, id string) (*respond.NotificationItem, error) {
			return nil, xerr.New(xerr.NotFound, "通知不存在")
		},
	}
	r := newTestRouter(svc, &stubExportService{})

	w := doRequest(r, http.MethodGet, "/Notifications/N404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, xerr.NotFound, resp.Code)
	assert.Equal(t, "通知不存在", resp.Message)
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(&stubNotifService{}, &stubExportService{})
	w := doRequest(r, http.MethodPost, "/Notifications", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAsReadValidationStatus(t *testing.T) {
	svc := &stubNotifService{
		markFn: func(ctx context.Context, id string) error {
			return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
		},
	}
	r := newTestRouter(svc, &stubExportService{})
	w := doRequest(r, http.MethodPut, "/Notifications/N1/read", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSuccessEnvelope(t *testing.T) {
	r := newTestRouter(&stubNotifService{}, &stubExportService{})
	w := doRequest(r, http.MethodDelete, "/Notifications/N1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, xerr.OK, resp.Code)
}

func TestExportSetsDownloadHeaders(t *testing.T) {
	export := &stubExportService{file: &service.ExportFile{
		Filename:    "notifications_20260815.csv",
		ContentType: "text/csv",
		Data:        []byte("id,title\n"),
	}}
	r := newTestRouter(&stubNotifService{}, export)

	w := doRequest(r, http.MethodGet, "/Notifications/export/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notifications_20260815.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "id,title\n", w.Body.String())
}

func TestExportUnknownFormatStatus(t *testing.T) {
	export := &stubExportService{err: xerr.New(xerr.BadRequest, "不支持的导出格式: xlsx")}
	r := newTestRouter(&stubNotifService{}, export)

	w := doRequest(r, http.MethodGet, "/Notifications/export/xlsx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
