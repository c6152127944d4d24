package entity

import "time"

const (
	// 通知类型
	TypeOrder        = "order"        // 订单
	TypeInstallation = "installation" // 安装施工
	TypeDesign       = "design"       // 设计稿
	TypeCustomer     = "customer"     // 客户
	TypeSystem       = "system"       // 系统

	// 优先级
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	// 接收者类型
	RecipientTypeUser = "user"
	RecipientTypeAll  = "all"
)

// ValidTypes 合法的通知类型集合
var ValidTypes = map[string]struct{}{
	TypeOrder:        {},
	TypeInstallation: {},
	TypeDesign:       {},
	TypeCustomer:     {},
	TypeSystem:       {},
}

// ValidPriorities 合法的优先级集合
var ValidPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// DefaultPriority 按类型给出默认优先级
func DefaultPriority(notifType string) string {
	switch notifType {
	case TypeInstallation:
		return PriorityHigh
	case TypeOrder, TypeDesign:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Notification 通知实体
// 列表查询统一按 created_at DESC, id DESC 排序，读/未读状态变化不影响顺序
type Notification struct {
	Id                int64      `gorm:"column:id;primaryKey;autoIncrement"`
	NotificationId    string     `gorm:"column:notification_id;type:char(20);uniqueIndex;not null"`
	Title             string     `gorm:"column:title;type:varchar(100);not null"`
	Message           string     `gorm:"column:message;type:text;not null"`
	Type              string     `gorm:"column:type;type:varchar(20);not null;index"`
	Priority          string     `gorm:"column:priority;type:varchar(10);not null"`
	IsRead            bool       `gorm:"column:is_read;not null;default:false;index"`
	ReadAt            *time.Time `gorm:"column:read_at;type:datetime"`
	RecipientId       string     `gorm:"column:recipient_id;type:char(20);index"` // 为空表示广播
	RecipientType     string     `gorm:"column:recipient_type;type:varchar(20)"`
	RelatedEntityId   string     `gorm:"column:related_entity_id;type:char(20)"`
	RelatedEntityType string     `gorm:"column:related_entity_type;type:varchar(20)"`
	ScheduledAt       *time.Time `gorm:"column:scheduled_at;type:datetime;index"`
	ExpiresAt         *time.Time `gorm:"column:expires_at;type:datetime;index"`
	Delivered         bool       `gorm:"column:delivered;not null;default:false"` // 定时通知是否已推送
	CreatedAt         time.Time  `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;type:datetime"`
}

func (Notification) TableName() string {
	return "notification"
}

// VisibleAt 判断通知在给定时刻是否应出现在活跃列表中
func (n *Notification) VisibleAt(t time.Time) bool {
	if n.ScheduledAt != nil && n.ScheduledAt.After(t) {
		return false
	}
	if n.ExpiresAt != nil && !n.ExpiresAt.After(t) {
		return false
	}
	return true
}
