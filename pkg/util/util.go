package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateNotificationID 生成通知公开 ID，N 前缀 + 19 位，固定 20 字符
func GenerateNotificationID() string {
	return "N" + GenerateShortUUID()[:19]
}

// GenerateUserID 生成用户公开 ID，U 前缀 + 19 位，固定 20 字符
func GenerateUserID() string {
	return "U" + GenerateShortUUID()[:19]
}
