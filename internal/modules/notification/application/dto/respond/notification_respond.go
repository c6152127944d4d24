package respond

import "time"

// NotificationItem 通知对外视图
type NotificationItem struct {
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

// ListNotificationsRespond 分页列表
type ListNotificationsRespond struct {
	Items    []NotificationItem `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// SendBulkRespond 批量发送结果
type SendBulkRespond struct {
	Accepted int `json:"accepted"`
}
