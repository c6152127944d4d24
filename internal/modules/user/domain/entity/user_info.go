package entity

import "time"

const (
	// 角色
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
	RoleInstaller = "installer"
	RoleDesigner  = "designer"

	// 状态
	StatusNormal   int8 = 0
	StatusDisabled int8 = 1
)

// UserInfo 后台账号（通知接收者）
type UserInfo struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid      string    `gorm:"column:uuid;type:char(20);uniqueIndex;not null"`
	Username  string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	Nickname  string    `gorm:"column:nickname;type:varchar(50)"`
	Password  string    `gorm:"column:password;type:varchar(100);not null"`
	Role      string    `gorm:"column:role;type:varchar(20);not null;default:'staff'"`
	Status    int8      `gorm:"column:status;type:tinyint;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// UserBrief 精简视图，接收者列表用
type UserBrief struct {
	Uuid     string `json:"uuid"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Status   int8   `json:"status"`
}
