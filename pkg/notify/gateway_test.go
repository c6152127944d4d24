package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WrapDesk/pkg/xerr"
)

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": msg,
		"data":    data,
	})
}

func TestGatewayListBuildsQueryAndAuth(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/Notifications", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, xerr.OK, "成功", ListResult{
			Items: []Notification{{
				Id:        "N001",
				Title:     "安装提醒",
				Type:      "installation",
				Priority:  "high",
				CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			}},
			Total:    1,
			Page:     2,
			PageSize: 10,
		})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "test-token", srv.Client())
	unread := false
	res, err := gw.List(context.Background(), ListFilter{
		Page:     2,
		PageSize: 10,
		IsRead:   &unread,
		Type:     "installation",
		Priority: "high",
		Search:   "提醒",
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "N001", res.Items[0].Id)
	assert.Equal(t, int64(1), res.Total)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"10"}, gotQuery["pageSize"])
	assert.Equal(t, []string{"false"}, gotQuery["isRead"])
	assert.Equal(t, []string{"installation"}, gotQuery["type"])
	assert.Equal(t, []string{"high"}, gotQuery["priority"])
	assert.Equal(t, []string{"提醒"}, gotQuery["search"])
	_, hasStart := gotQuery["startDate"]
	assert.False(t, hasStart)
}

func TestGatewayErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"未认证", http.StatusUnauthorized, xerr.IsAuthError},
		{"参数错误", http.StatusBadRequest, xerr.IsValidationError},
		{"不存在", http.StatusNotFound, xerr.IsNotFound},
		{"服务端错误", http.StatusInternalServerError, xerr.IsServerError},
		{"网关错误", http.StatusBadGateway, xerr.IsServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tc.status, tc.status, tc.name, nil)
			}))
			defer srv.Close()

			gw := NewHTTPGateway(srv.URL, "", srv.Client())
			_, err := gw.Stats(context.Background())
			require.Error(t, err)
			assert.True(t, tc.check(err), "状态码 %d 归类错误: %v", tc.status, err)
			var ce *xerr.CodeError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.name, ce.Message)
		})
	}
}

func TestGatewayTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	gw := NewHTTPGateway(srv.URL, "", nil)
	err := gw.MarkAllAsRead(context.Background())
	require.Error(t, err)
	assert.True(t, xerr.IsNetworkError(err))
}

func TestGatewayEnvelopeCodeMapped(t *testing.T) {
	// HTTP 200 但业务码非 200 的响应也要映射到错误分类
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, xerr.BadRequest, "接收者集合为空", nil)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "", srv.Client())
	_, err := gw.SendBulk(context.Background(), BulkPayload{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.True(t, xerr.IsValidationError(err))
}

func TestGatewayMarkAsReadPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		writeEnvelope(w, http.StatusOK, xerr.OK, "成功", nil)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "", srv.Client())
	require.NoError(t, gw.MarkAsRead(context.Background(), "N123"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/Notifications/N123/read", gotPath)

	require.NoError(t, gw.Delete(context.Background(), "N123"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/Notifications/N123", gotPath)
}

func TestGatewayMarkManyBody(t *testing.T) {
	var gotBody map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeEnvelope(w, http.StatusOK, xerr.OK, "成功", nil)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "", srv.Client())
	require.NoError(t, gw.MarkManyAsRead(context.Background(), []string{"N1", "N2"}))
	assert.Equal(t, []string{"N1", "N2"}, gotBody["notificationIds"])
}

func TestGatewayExportReturnsRawBody(t *testing.T) {
	csv := "id,title\nN1,测试\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Notifications/export/csv", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "", srv.Client())
	data, err := gw.Export(context.Background(), "csv", ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
}

func TestGatewayCreateDecodesItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload CreatePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeEnvelope(w, http.StatusOK, xerr.OK, "成功", Notification{
			Id:       "N900",
			Title:    payload.Title,
			Message:  payload.Message,
			Type:     payload.Type,
			Priority: "medium",
		})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "", srv.Client())
	n, err := gw.Create(context.Background(), CreatePayload{
		Title:   "新订单",
		Message: "订单 #42 已创建",
		Type:    "order",
	})
	require.NoError(t, err)
	assert.Equal(t, "N900", n.Id)
	assert.Equal(t, "新订单", n.Title)
	assert.Equal(t, "medium", n.Priority)
}
