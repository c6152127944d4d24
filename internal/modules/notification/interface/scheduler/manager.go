package scheduler

import (
	"context"
	"strconv"
	"time"

	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/pkg/zlog"

	"github.com/robfig/cron/v3"
)

// SweeperManager 负责定时通知投递和过期清理
type SweeperManager struct {
	cron          *cron.Cron
	svc           service.NotificationService
	retentionDays int
	stopChan      chan struct{}
}

// NewSweeperManager sweepCron 为标准5段 Cron 表达式，控制过期清理频率
func NewSweeperManager(svc service.NotificationService, sweepCron string, retentionDays int) *SweeperManager {
	m := &SweeperManager{
		// 使用标准5段Cron表达式（不含秒）
		cron:          cron.New(),
		svc:           svc,
		retentionDays: retentionDays,
		stopChan:      make(chan struct{}),
	}

	if sweepCron == "" {
		sweepCron = "0 3 * * *"
	}
	if _, err := m.cron.AddFunc(sweepCron, m.purge); err != nil {
		zlog.Error("sweep cron schedule failed: " + err.Error())
	}
	return m
}

func (m *SweeperManager) Start() {
	m.cron.Start()
	go m.runPoller()
	zlog.Info("Notification sweeper started")
}

func (m *SweeperManager) Stop() {
	m.cron.Stop()
	close(m.stopChan)
}

// runPoller 高频轮询到期的定时通知，保证投递延迟在半分钟以内
func (m *SweeperManager) runPoller() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.deliverDue()
		case <-m.stopChan:
			return
		}
	}
}

func (m *SweeperManager) deliverDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	n, err := m.svc.DeliverDueScheduled(ctx, 100)
	if err != nil {
		zlog.Error("scheduled delivery failed: " + err.Error())
		return
	}
	if n > 0 {
		zlog.Info("delivered scheduled notifications: " + strconv.Itoa(n))
	}
}

func (m *SweeperManager) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	purged, err := m.svc.PurgeExpired(ctx, m.retentionDays)
	if err != nil {
		zlog.Error("notification purge failed: " + err.Error())
		return
	}
	if purged > 0 {
		zlog.Info("purged expired notifications: " + strconv.FormatInt(purged, 10))
	}
}
