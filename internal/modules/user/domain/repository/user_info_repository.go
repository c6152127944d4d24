package repository

import "WrapDesk/internal/modules/user/domain/entity"

// UserInfoRepository 接口定义
type UserInfoRepository interface {
	CreateUserInfo(user *entity.UserInfo) error
	GetUserInfoByUsername(username string) (*entity.UserInfo, error)
	GetUserInfoByUUID(uuid string) (*entity.UserInfo, error)
	GetUserBriefByUUIDs(uuids []string) ([]entity.UserBrief, error)
	// ListActiveUserIds 返回全部可用账号的 uuid（广播接收者解析用）
	ListActiveUserIds() ([]string, error)
	ListUserBriefs() ([]entity.UserBrief, error)
}
