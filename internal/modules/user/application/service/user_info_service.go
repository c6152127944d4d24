package service

import (
	"errors"
	"time"

	"WrapDesk/internal/modules/user/application/dto/request"
	"WrapDesk/internal/modules/user/application/dto/respond"
	"WrapDesk/internal/modules/user/domain/entity"
	"WrapDesk/internal/modules/user/domain/repository"
	"WrapDesk/pkg/util"
	"WrapDesk/pkg/util/myjwt"
	"WrapDesk/pkg/xerr"
	"WrapDesk/pkg/zlog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfoService 接口定义 (Application Service)
type UserInfoService interface {
	Register(registerReq request.RegisterRequest) (*respond.RegisterRespond, error)
	Login(loginReq request.LoginRequest) (*respond.LoginRespond, error)
	ListRecipients() ([]entity.UserBrief, error)
}

type userInfoServiceImpl struct {
	repo repository.UserInfoRepository
}

// NewUserInfoService 构造函数
func NewUserInfoService(repo repository.UserInfoRepository) UserInfoService {
	return &userInfoServiceImpl{repo: repo}
}

func (u *userInfoServiceImpl) Register(registerReq request.RegisterRequest) (*respond.RegisterRespond, error) {
	if registerReq.Username == "" || registerReq.Password == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	// 1. 用户名查重
	_, err := u.repo.GetUserInfoByUsername(registerReq.Username)
	if err == nil {
		return nil, xerr.New(xerr.BadRequest, "用户已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	role := registerReq.Role
	switch role {
	case entity.RoleAdmin, entity.RoleStaff, entity.RoleInstaller, entity.RoleDesigner:
	case "":
		role = entity.RoleStaff
	default:
		return nil, xerr.New(xerr.BadRequest, "不支持的角色")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(registerReq.Password), bcrypt.DefaultCost)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	newUser := entity.UserInfo{
		Uuid:      util.GenerateUserID(),
		Username:  registerReq.Username,
		Nickname:  registerReq.Nickname,
		Password:  string(hashed),
		Role:      role,
		Status:    entity.StatusNormal,
		CreatedAt: time.Now(),
	}

	if err := u.repo.CreateUserInfo(&newUser); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &respond.RegisterRespond{
		Uuid:     newUser.Uuid,
		Username: newUser.Username,
		Nickname: newUser.Nickname,
		Role:     newUser.Role,
	}, nil
}

func (u *userInfoServiceImpl) Login(loginReq request.LoginRequest) (*respond.LoginRespond, error) {
	if loginReq.Username == "" || loginReq.Password == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	user, err := u.repo.GetUserInfoByUsername(loginReq.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.Unauthorized, "用户名或密码错误")
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if user.Status != entity.StatusNormal {
		return nil, xerr.New(xerr.Forbidden, "账号已禁用")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginReq.Password)) != nil {
		return nil, xerr.New(xerr.Unauthorized, "用户名或密码错误")
	}

	token, err := myjwt.GenerateToken(user.Uuid, user.Username, user.Role)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &respond.LoginRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Role:     user.Role,
		Token:    token,
	}, nil
}

func (u *userInfoServiceImpl) ListRecipients() ([]entity.UserBrief, error) {
	briefs, err := u.repo.ListUserBriefs()
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return briefs, nil
}
