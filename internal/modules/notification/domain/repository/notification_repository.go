package repository

import (
	"WrapDesk/internal/modules/notification/domain/entity"
	"context"
	"time"
)

// ListFilter 列表查询条件，零值字段不参与过滤
type ListFilter struct {
	Page        int
	PageSize    int
	IsRead      *bool
	Type        string
	Priority    string
	RecipientId string // 为空时不限制接收者；非空时匹配该接收者或广播
	StartDate   *time.Time
	EndDate     *time.Time
	Search      string // 标题/内容模糊匹配
	// IncludeInactive 为 true 时不过滤 scheduledAt/expiresAt 可见性边界（管理后台用）
	IncludeInactive bool
}

// Stats 统计聚合
type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	Read   int64 `json:"read"`
	Today  int64 `json:"today"`
}

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	Create(ctx context.Context, notif *entity.Notification) error
	CreateBatch(ctx context.Context, notifs []*entity.Notification) error
	GetByNotificationId(ctx context.Context, notificationId string) (*entity.Notification, error)
	List(ctx context.Context, filter ListFilter) ([]entity.Notification, int64, error)
	Update(ctx context.Context, notif *entity.Notification) error
	// Delete 按公开 ID 删除，返回受影响行数；删除不存在的 ID 不视为错误
	Delete(ctx context.Context, notificationId string) (int64, error)
	// MarkRead 置已读，已读的行不会重复更新 read_at
	MarkRead(ctx context.Context, notificationId string) error
	MarkManyRead(ctx context.Context, notificationIds []string) error
	MarkAllRead(ctx context.Context, recipientId string) error
	Count(ctx context.Context, recipientId string) (*Stats, error)
	// GetDueScheduled 获取已到投递时间但尚未推送的定时通知
	GetDueScheduled(ctx context.Context, now time.Time, limit int) ([]*entity.Notification, error)
	MarkDelivered(ctx context.Context, ids []int64) error
	// PurgeExpired 物理删除过期超过保留期的通知，返回删除行数
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
