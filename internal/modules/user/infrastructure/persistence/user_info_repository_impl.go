package persistence

import (
	"WrapDesk/internal/modules/user/domain/entity"
	"WrapDesk/internal/modules/user/domain/repository"

	"gorm.io/gorm"
)

// userInfoRepositoryImpl 结构体
type userInfoRepositoryImpl struct {
	db *gorm.DB
}

// NewUserInfoRepository 构造函数
func NewUserInfoRepository(db *gorm.DB) repository.UserInfoRepository {
	return &userInfoRepositoryImpl{db: db}
}

func (r *userInfoRepositoryImpl) CreateUserInfo(user *entity.UserInfo) error {
	return r.db.Create(user).Error
}

func (r *userInfoRepositoryImpl) GetUserInfoByUsername(username string) (*entity.UserInfo, error) {
	var user entity.UserInfo
	// First 查不到会返回 ErrRecordNotFound
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userInfoRepositoryImpl) GetUserInfoByUUID(uuid string) (*entity.UserInfo, error) {
	var user entity.UserInfo
	err := r.db.Where("uuid = ?", uuid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userInfoRepositoryImpl) GetUserBriefByUUIDs(uuids []string) ([]entity.UserBrief, error) {
	if len(uuids) == 0 {
		return []entity.UserBrief{}, nil
	}

	var users []entity.UserBrief
	err := r.db.Model(&entity.UserInfo{}).
		Select("uuid", "username", "nickname", "role", "status").
		Where("uuid IN ?", uuids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userInfoRepositoryImpl) ListActiveUserIds() ([]string, error) {
	var uuids []string
	err := r.db.Model(&entity.UserInfo{}).
		Where("status = ?", entity.StatusNormal).
		Pluck("uuid", &uuids).Error
	if err != nil {
		return nil, err
	}
	return uuids, nil
}

func (r *userInfoRepositoryImpl) ListUserBriefs() ([]entity.UserBrief, error) {
	var users []entity.UserBrief
	err := r.db.Model(&entity.UserInfo{}).
		Select("uuid", "username", "nickname", "role", "status").
		Where("status = ?", entity.StatusNormal).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
