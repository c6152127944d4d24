package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"WrapDesk/pkg/xerr"
)

// Notification 客户端视图，字段与服务端 NotificationItem 对齐
type Notification struct {
	Id                string     `json:"id"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	Type              string     `json:"type"`
	Priority          string     `json:"priority"`
	IsRead            bool       `json:"isRead"`
	RecipientId       string     `json:"recipientId,omitempty"`
	RecipientType     string     `json:"recipientType,omitempty"`
	RelatedEntityId   string     `json:"relatedEntityId,omitempty"`
	RelatedEntityType string     `json:"relatedEntityType,omitempty"`
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ListFilter 列表过滤条件，零值字段不参与过滤
type ListFilter struct {
	Page      int
	PageSize  int
	IsRead    *bool
	Type      string
	Priority  string
	StartDate string
	EndDate   string
	Search    string
}

// ListResult 分页列表结果
type ListResult struct {
	Items    []Notification `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// Stats 统计聚合
type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	Read   int64 `json:"read"`
	Today  int64 `json:"today"`
}

// CreatePayload 创建通知参数
type CreatePayload struct {
	Title             string `json:"title"`
	Message           string `json:"message"`
	Type              string `json:"type"`
	Priority          string `json:"priority,omitempty"`
	RecipientId       string `json:"recipientId,omitempty"`
	RecipientType     string `json:"recipientType,omitempty"`
	RelatedEntityId   string `json:"relatedEntityId,omitempty"`
	RelatedEntityType string `json:"relatedEntityType,omitempty"`
	ScheduledAt       string `json:"scheduledAt,omitempty"`
	ExpiresAt         string `json:"expiresAt,omitempty"`
}

// UpdatePayload 更新通知参数，空字段保持原值
type UpdatePayload struct {
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	Priority    string `json:"priority,omitempty"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

// BulkPayload 批量发送参数
type BulkPayload struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Type          string   `json:"type,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	RecipientIds  []string `json:"recipientIds,omitempty"`
	RecipientType string   `json:"recipientType,omitempty"`
	ScheduledAt   string   `json:"scheduledAt,omitempty"`
}

// BulkResult 批量发送结果
type BulkResult struct {
	Accepted int `json:"accepted"`
}

// Gateway 通知网关，所有网络 I/O 的唯一边界
type Gateway interface {
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	GetById(ctx context.Context, id string) (*Notification, error)
	Create(ctx context.Context, payload CreatePayload) (*Notification, error)
	Update(ctx context.Context, id string, payload UpdatePayload) (*Notification, error)
	Delete(ctx context.Context, id string) error
	MarkAsRead(ctx context.Context, id string) error
	MarkManyAsRead(ctx context.Context, ids []string) error
	MarkAllAsRead(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
	SendBulk(ctx context.Context, payload BulkPayload) (*BulkResult, error)
	Export(ctx context.Context, format string, filter ListFilter) ([]byte, error)
}

// HTTPGateway 基于 REST 后端的 Gateway 实现
type HTTPGateway struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewHTTPGateway baseURL 形如 http://host:port，token 为登录返回的 JWT
func NewHTTPGateway(baseURL string, token string, hc *http.Client) *HTTPGateway {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPGateway{baseURL: baseURL, token: token, hc: hc}
}

// envelope 服务端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f ListFilter) query() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	if f.IsRead != nil {
		q.Set("isRead", strconv.FormatBool(*f.IsRead))
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// errorFromStatus 按 HTTP 状态码归类错误
func errorFromStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized:
		return xerr.New(xerr.Unauthorized, message)
	case status == http.StatusNotFound:
		return xerr.New(xerr.NotFound, message)
	case status == http.StatusBadRequest:
		return xerr.New(xerr.BadRequest, message)
	case status >= 500:
		return xerr.New(xerr.InternalServerError, message)
	default:
		return xerr.New(status, message)
	}
}

// do 发起请求并返回原始响应体，错误统一映射到 xerr 分类
func (g *HTTPGateway) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, xerr.New(xerr.BadRequest, err.Error())
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, xerr.New(xerr.NetworkError, err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		// 传输层失败，请求未得到响应
		return nil, xerr.New(xerr.NetworkError, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerr.New(xerr.NetworkError, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		msg := ""
		if json.Unmarshal(raw, &env) == nil {
			msg = env.Message
		}
		return nil, errorFromStatus(resp.StatusCode, msg)
	}
	return raw, nil
}

// doJSON 请求并把响应 data 解码到 out，out 为 nil 时只检查状态
func (g *HTTPGateway) doJSON(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	raw, err := g.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return xerr.New(xerr.InternalServerError, "响应解析失败: "+err.Error())
	}
	if env.Code != xerr.OK {
		return errorFromStatus(env.Code, env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return xerr.New(xerr.InternalServerError, "响应解析失败: "+err.Error())
	}
	return nil
}

func (g *HTTPGateway) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	var out ListResult
	if err := g.doJSON(ctx, http.MethodGet, "/Notifications", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) GetById(ctx context.Context, id string) (*Notification, error) {
	var out Notification
	if err := g.doJSON(ctx, http.MethodGet, "/Notifications/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) Create(ctx context.Context, payload CreatePayload) (*Notification, error) {
	var out Notification
	if err := g.doJSON(ctx, http.MethodPost, "/Notifications", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) Update(ctx context.Context, id string, payload UpdatePayload) (*Notification, error) {
	var out Notification
	if err := g.doJSON(ctx, http.MethodPut, "/Notifications/"+url.PathEscape(id), nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, id string) error {
	return g.doJSON(ctx, http.MethodDelete, "/Notifications/"+url.PathEscape(id), nil, nil, nil)
}

func (g *HTTPGateway) MarkAsRead(ctx context.Context, id string) error {
	return g.doJSON(ctx, http.MethodPut, "/Notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (g *HTTPGateway) MarkManyAsRead(ctx context.Context, ids []string) error {
	body := map[string]interface{}{"notificationIds": ids}
	return g.doJSON(ctx, http.MethodPut, "/Notifications/mark-read", nil, body, nil)
}

func (g *HTTPGateway) MarkAllAsRead(ctx context.Context) error {
	return g.doJSON(ctx, http.MethodPut, "/Notifications/mark-all-read", nil, nil, nil)
}

func (g *HTTPGateway) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := g.doJSON(ctx, http.MethodGet, "/Notifications/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) SendBulk(ctx context.Context, payload BulkPayload) (*BulkResult, error) {
	var out BulkResult
	if err := g.doJSON(ctx, http.MethodPost, "/Notifications/bulk", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) Export(ctx context.Context, format string, filter ListFilter) ([]byte, error) {
	raw, err := g.do(ctx, http.MethodGet, "/Notifications/export/"+url.PathEscape(format), filter.query(), nil)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

var _ Gateway = (*HTTPGateway)(nil)

// String 便于日志排查
func (f ListFilter) String() string {
	return fmt.Sprintf("ListFilter%v", f.query())
}
