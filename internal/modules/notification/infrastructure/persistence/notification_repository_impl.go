package persistence

import (
	"WrapDesk/internal/modules/notification/domain/entity"
	"WrapDesk/internal/modules/notification/domain/repository"
	"context"
	"time"

	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository 构造函数
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, notif *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

func (r *notificationRepositoryImpl) CreateBatch(ctx context.Context, notifs []*entity.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	// 分批写入，避免一次 insert 过大
	return r.db.WithContext(ctx).CreateInBatches(notifs, 200).Error
}

func (r *notificationRepositoryImpl) GetByNotificationId(ctx context.Context, notificationId string) (*entity.Notification, error) {
	var notif entity.Notification
	// First 查不到会返回 ErrRecordNotFound
	err := r.db.WithContext(ctx).Where("notification_id = ?", notificationId).First(&notif).Error
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// applyFilter 把 ListFilter 展开成 where 条件
func applyFilter(q *gorm.DB, filter repository.ListFilter) *gorm.DB {
	if filter.RecipientId != "" {
		q = q.Where("recipient_id = ? OR recipient_id = ''", filter.RecipientId)
	}
	if filter.IsRead != nil {
		q = q.Where("is_read = ?", *filter.IsRead)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at < ?", *filter.EndDate)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title LIKE ? OR message LIKE ?", like, like)
	}
	if !filter.IncludeInactive {
		now := time.Now()
		q = q.Where("scheduled_at IS NULL OR scheduled_at <= ?", now).
			Where("expires_at IS NULL OR expires_at > ?", now)
	}
	return q
}

func (r *notificationRepositoryImpl) List(ctx context.Context, filter repository.ListFilter) ([]entity.Notification, int64, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&entity.Notification{}), filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var notifs []entity.Notification
	// 创建时间倒序，id 兜底保证同一时刻插入的顺序稳定
	err := q.Order("created_at DESC, id DESC").Find(&notifs).Error
	if err != nil {
		return nil, 0, err
	}
	return notifs, total, nil
}

func (r *notificationRepositoryImpl) Update(ctx context.Context, notif *entity.Notification) error {
	return r.db.WithContext(ctx).Save(notif).Error
}

func (r *notificationRepositoryImpl) Delete(ctx context.Context, notificationId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationId).
		Delete(&entity.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, notificationId string) error {
	now := time.Now()
	// 只更新未读行，重复置已读是幂等空操作
	return r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("notification_id = ? AND is_read = ?", notificationId, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *notificationRepositoryImpl) MarkManyRead(ctx context.Context, notificationIds []string) error {
	if len(notificationIds) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("notification_id IN ? AND is_read = ?", notificationIds, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, recipientId string) error {
	now := time.Now()
	q := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("is_read = ?", false)
	if recipientId != "" {
		q = q.Where("recipient_id = ? OR recipient_id = ''", recipientId)
	}
	return q.Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *notificationRepositoryImpl) Count(ctx context.Context, recipientId string) (*repository.Stats, error) {
	stats := &repository.Stats{}
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&entity.Notification{})
		if recipientId != "" {
			q = q.Where("recipient_id = ? OR recipient_id = ''", recipientId)
		}
		return q
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("is_read = ?", false).Count(&stats.Unread).Error; err != nil {
		return nil, err
	}
	stats.Read = stats.Total - stats.Unread

	todayStart := time.Now().Truncate(24 * time.Hour)
	if err := base().Where("created_at >= ?", todayStart).Count(&stats.Today).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *notificationRepositoryImpl) GetDueScheduled(ctx context.Context, now time.Time, limit int) ([]*entity.Notification, error) {
	var notifs []*entity.Notification
	err := r.db.WithContext(ctx).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ? AND delivered = ?", now, false).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

func (r *notificationRepositoryImpl) MarkDelivered(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id IN ?", ids).
		Update("delivered", true).Error
}

func (r *notificationRepositoryImpl) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", before).
		Delete(&entity.Notification{})
	return res.RowsAffected, res.Error
}
