package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, DefaultPriority(TypeInstallation))
	assert.Equal(t, PriorityMedium, DefaultPriority(TypeOrder))
	assert.Equal(t, PriorityMedium, DefaultPriority(TypeDesign))
	assert.Equal(t, PriorityLow, DefaultPriority(TypeCustomer))
	assert.Equal(t, PriorityLow, DefaultPriority(TypeSystem))
}

func TestVisibleAt(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	n := &Notification{}
	assert.True(t, n.VisibleAt(now), "无时间边界的通知始终可见")

	n = &Notification{ScheduledAt: &after}
	assert.False(t, n.VisibleAt(now), "未到投递时间不可见")

	n = &Notification{ScheduledAt: &before}
	assert.True(t, n.VisibleAt(now))

	n = &Notification{ExpiresAt: &before}
	assert.False(t, n.VisibleAt(now), "已过期不可见")

	n = &Notification{ExpiresAt: &now}
	assert.False(t, n.VisibleAt(now), "到期时刻即不可见")

	n = &Notification{ScheduledAt: &before, ExpiresAt: &after}
	assert.True(t, n.VisibleAt(now))
}
