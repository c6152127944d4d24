package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"WrapDesk/internal/modules/user/application/dto/request"
	"WrapDesk/internal/modules/user/domain/entity"
	"WrapDesk/pkg/xerr"
)

// 签发 token 需要 jwt 密钥，测试进程用临时配置文件兜底
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "wrapdesk-test")
	if err != nil {
		os.Exit(1)
	}
	path := filepath.Join(dir, "config.toml")
	conf := "[jwtConfig]\nkey = \"test-secret\"\nexpireHours = 1\nissuer = \"WrapDesk-test\"\n"
	if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
		os.Exit(1)
	}
	_ = os.Setenv("WRAPDESK_CONFIG", path)

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// fakeUserInfoRepo 内存账号表，按用户名索引
type fakeUserInfoRepo struct {
	users map[string]*entity.UserInfo
}

func newFakeUserInfoRepo() *fakeUserInfoRepo {
	return &fakeUserInfoRepo{users: map[string]*entity.UserInfo{}}
}

func (r *fakeUserInfoRepo) CreateUserInfo(user *entity.UserInfo) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserInfoRepo) GetUserInfoByUsername(username string) (*entity.UserInfo, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserInfoRepo) GetUserInfoByUUID(uuid string) (*entity.UserInfo, error) {
	for _, u := range r.users {
		if u.Uuid == uuid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserInfoRepo) GetUserBriefByUUIDs(uuids []string) ([]entity.UserBrief, error) {
	return nil, nil
}

func (r *fakeUserInfoRepo) ListActiveUserIds() ([]string, error) { return nil, nil }

func (r *fakeUserInfoRepo) ListUserBriefs() ([]entity.UserBrief, error) {
	var out []entity.UserBrief
	for _, u := range r.users {
		out = append(out, entity.UserBrief{
			Uuid:     u.Uuid,
			Username: u.Username,
			Nickname: u.Nickname,
			Role:     u.Role,
			Status:   u.Status,
		})
	}
	return out, nil
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newFakeUserInfoRepo()
	svc := NewUserInfoService(repo)

	res, err := svc.Register(request.RegisterRequest{
		Username: "zhangsan",
		Password: "secret123",
		Nickname: "张三",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStaff, res.Role)
	assert.NotEmpty(t, res.Uuid)

	stored := repo.users["zhangsan"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestRegisterRejectsDuplicateAndBadRole(t *testing.T) {
	repo := newFakeUserInfoRepo()
	svc := NewUserInfoService(repo)

	_, err := svc.Register(request.RegisterRequest{Username: "zhangsan", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(request.RegisterRequest{Username: "zhangsan", Password: "x"})
	require.Error(t, err)
	assert.True(t, xerr.IsValidationError(err))

	_, err = svc.Register(request.RegisterRequest{Username: "lisi", Password: "x", Role: "superadmin"})
	require.Error(t, err)
	assert.True(t, xerr.IsValidationError(err))
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	repo := newFakeUserInfoRepo()
	svc := NewUserInfoService(repo)

	_, err := svc.Register(request.RegisterRequest{
		Username: "zhangsan",
		Password: "secret123",
		Role:     entity.RoleInstaller,
	})
	require.NoError(t, err)

	res, err := svc.Login(request.LoginRequest{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, entity.RoleInstaller, res.Role)
}

func TestLoginWrongPasswordIsAuthError(t *testing.T) {
	repo := newFakeUserInfoRepo()
	svc := NewUserInfoService(repo)

	_, err := svc.Register(request.RegisterRequest{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(request.LoginRequest{Username: "zhangsan", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, xerr.IsAuthError(err))

	_, err = svc.Login(request.LoginRequest{Username: "nobody", Password: "x"})
	require.Error(t, err)
	assert.True(t, xerr.IsAuthError(err))
}

func TestLoginDisabledAccountForbidden(t *testing.T) {
	repo := newFakeUserInfoRepo()
	svc := NewUserInfoService(repo)

	_, err := svc.Register(request.RegisterRequest{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)
	repo.users["zhangsan"].Status = entity.StatusDisabled

	_, err = svc.Login(request.LoginRequest{Username: "zhangsan", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, xerr.Forbidden, xerr.CodeOf(err))
}
