package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/application/dto/respond"
	"WrapDesk/internal/modules/notification/domain/entity"
	"WrapDesk/internal/modules/notification/domain/repository"
	"WrapDesk/internal/modules/notification/infrastructure/mq"
	userRepository "WrapDesk/internal/modules/user/domain/repository"
	pkgRedis "WrapDesk/pkg/redis"
	"WrapDesk/pkg/util"
	"WrapDesk/pkg/ws"
	"WrapDesk/pkg/xerr"
	"WrapDesk/pkg/zlog"

	"gorm.io/gorm"
)

const statsCacheKey = "wrapdesk:notification:stats:"

// NotificationService 通知应用服务
type NotificationService interface {
	List(ctx context.Context, recipientId string, req request.ListNotificationsRequest) (*respond.ListNotificationsRespond, error)
	GetById(ctx context.Context, id string) (*respond.NotificationItem, error)
	Create(ctx context.Context, req request.CreateNotificationRequest) (*respond.NotificationItem, error)
	Update(ctx context.Context, id string, req request.UpdateNotificationRequest) (*respond.NotificationItem, error)
	Delete(ctx context.Context, id string) error
	MarkAsRead(ctx context.Context, id string) error
	MarkManyAsRead(ctx context.Context, ids []string) error
	MarkAllAsRead(ctx context.Context, recipientId string) error
	Stats(ctx context.Context, recipientId string) (*repository.Stats, error)
	SendBulk(ctx context.Context, req request.SendBulkRequest) (*respond.SendBulkRespond, error)
	// DeliverDueScheduled 投递已到时间的定时通知，返回投递数量（清理任务调用）
	DeliverDueScheduled(ctx context.Context, limit int) (int, error)
	// PurgeExpired 物理删除过期超过保留期的通知（清理任务调用）
	PurgeExpired(ctx context.Context, retentionDays int) (int64, error)
}

type notificationServiceImpl struct {
	repo      repository.NotificationRepository
	userRepo  userRepository.UserInfoRepository
	hub       *ws.Hub
	publisher mq.Publisher // 可为 nil（Kafka 未启用）

	notifyTopic   string
	statsCacheTTL time.Duration
}

// NewNotificationService 构造函数，hub/publisher 允许为 nil
func NewNotificationService(repo repository.NotificationRepository, userRepo userRepository.UserInfoRepository, hub *ws.Hub, publisher mq.Publisher, notifyTopic string, statsCacheSeconds int) NotificationService {
	if statsCacheSeconds <= 0 {
		statsCacheSeconds = 30
	}
	return &notificationServiceImpl{
		repo:          repo,
		userRepo:      userRepo,
		hub:           hub,
		publisher:     publisher,
		notifyTopic:   notifyTopic,
		statsCacheTTL: time.Duration(statsCacheSeconds) * time.Second,
	}
}

// parseTime 接受 RFC3339 或 2006-01-02 两种格式
func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, xerr.New(xerr.BadRequest, "时间格式错误: "+s)
}

func toItem(n *entity.Notification) *respond.NotificationItem {
	return &respond.NotificationItem{
		Id:                n.NotificationId,
		Title:             n.Title,
		Message:           n.Message,
		Type:              n.Type,
		Priority:          n.Priority,
		IsRead:            n.IsRead,
		RecipientId:       n.RecipientId,
		RecipientType:     n.RecipientType,
		RelatedEntityId:   n.RelatedEntityId,
		RelatedEntityType: n.RelatedEntityType,
		ScheduledAt:       n.ScheduledAt,
		ExpiresAt:         n.ExpiresAt,
		CreatedAt:         n.CreatedAt,
	}
}

// buildFilter 把请求参数转换为仓储过滤条件
func buildFilter(recipientId string, req request.ListNotificationsRequest) (repository.ListFilter, error) {
	filter := repository.ListFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		IsRead:      req.IsRead,
		Type:        req.Type,
		Priority:    req.Priority,
		RecipientId: recipientId,
		Search:      req.Search,
	}
	start, err := parseTime(req.StartDate)
	if err != nil {
		return filter, err
	}
	end, err := parseTime(req.EndDate)
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end
	return filter, nil
}

func (s *notificationServiceImpl) List(ctx context.Context, recipientId string, req request.ListNotificationsRequest) (*respond.ListNotificationsRespond, error) {
	filter, err := buildFilter(recipientId, req)
	if err != nil {
		return nil, err
	}
	if req.Type != "" {
		if _, ok := entity.ValidTypes[req.Type]; !ok {
			return nil, xerr.New(xerr.BadRequest, "不支持的通知类型")
		}
	}
	if req.Priority != "" {
		if _, ok := entity.ValidPriorities[req.Priority]; !ok {
			return nil, xerr.New(xerr.BadRequest, "不支持的优先级")
		}
	}

	notifs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	items := make([]respond.NotificationItem, 0, len(notifs))
	for i := range notifs {
		items = append(items, *toItem(&notifs[i]))
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	return &respond.ListNotificationsRespond{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: req.PageSize,
	}, nil
}

func (s *notificationServiceImpl) GetById(ctx context.Context, id string) (*respond.NotificationItem, error) {
	if id == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	notif, err := s.repo.GetByNotificationId(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "通知不存在")
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return toItem(notif), nil
}

// validateCreate 校验并补全创建参数，返回实体
func (s *notificationServiceImpl) validateCreate(req request.CreateNotificationRequest) (*entity.Notification, error) {
	if req.Title == "" || req.Message == "" || req.Type == "" {
		return nil, xerr.New(xerr.BadRequest, "title/message/type 不能为空")
	}
	if _, ok := entity.ValidTypes[req.Type]; !ok {
		return nil, xerr.New(xerr.BadRequest, "不支持的通知类型")
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.DefaultPriority(req.Type)
	}
	if _, ok := entity.ValidPriorities[priority]; !ok {
		return nil, xerr.New(xerr.BadRequest, "不支持的优先级")
	}

	scheduledAt, err := parseTime(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseTime(req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt != nil && expiresAt != nil && !expiresAt.After(*scheduledAt) {
		return nil, xerr.New(xerr.BadRequest, "expiresAt 必须晚于 scheduledAt")
	}

	recipientType := req.RecipientType
	if recipientType == "" {
		if req.RecipientId == "" {
			recipientType = entity.RecipientTypeAll
		} else {
			recipientType = entity.RecipientTypeUser
		}
	}

	now := time.Now()
	return &entity.Notification{
		NotificationId:    util.GenerateNotificationID(),
		Title:             req.Title,
		Message:           req.Message,
		Type:              req.Type,
		Priority:          priority,
		RecipientId:       req.RecipientId,
		RecipientType:     recipientType,
		RelatedEntityId:   req.RelatedEntityId,
		RelatedEntityType: req.RelatedEntityType,
		ScheduledAt:       scheduledAt,
		ExpiresAt:         expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (s *notificationServiceImpl) Create(ctx context.Context, req request.CreateNotificationRequest) (*respond.NotificationItem, error) {
	notif, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	// 接收者存在性校验
	if notif.RecipientId != "" {
		briefs, err := s.userRepo.GetUserBriefByUUIDs([]string{notif.RecipientId})
		if err != nil {
			zlog.Error(err.Error())
			return nil, xerr.ErrServerError
		}
		if len(briefs) == 0 {
			return nil, xerr.New(xerr.BadRequest, "接收者不存在")
		}
	}

	if err := s.repo.Create(ctx, notif); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	s.invalidateStats(ctx, notif.RecipientId)

	// 立即可见的通知直接推送；定时通知由清理任务到点投递
	if notif.ScheduledAt == nil || !notif.ScheduledAt.After(time.Now()) {
		s.push(ctx, notif)
		_ = s.repo.MarkDelivered(ctx, []int64{notif.Id})
	}

	return toItem(notif), nil
}

// push 通过 WebSocket 推送并发布 Kafka 事件
func (s *notificationServiceImpl) push(ctx context.Context, notif *entity.Notification) {
	payload := map[string]interface{}{
		"event": "notification.created",
		"data":  toItem(notif),
	}

	if s.hub != nil {
		if notif.RecipientId != "" {
			_ = s.hub.SendJSON(notif.RecipientId, payload)
		} else {
			_ = s.hub.BroadcastJSON(payload)
		}
	}

	if s.publisher != nil && s.notifyTopic != "" {
		b, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if _, err := s.publisher.Publish(ctx, mq.Message{
			Topic: s.notifyTopic,
			Key:   []byte(notif.NotificationId),
			Value: b,
		}); err != nil {
			zlog.Warn("notification event publish failed: " + err.Error())
		}
	}
}

func (s *notificationServiceImpl) Update(ctx context.Context, id string, req request.UpdateNotificationRequest) (*respond.NotificationItem, error) {
	if id == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	notif, err := s.repo.GetByNotificationId(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.NotFound, "通知不存在")
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	if req.Title != "" {
		notif.Title = req.Title
	}
	if req.Message != "" {
		notif.Message = req.Message
	}
	if req.Priority != "" {
		if _, ok := entity.ValidPriorities[req.Priority]; !ok {
			return nil, xerr.New(xerr.BadRequest, "不支持的优先级")
		}
		notif.Priority = req.Priority
	}
	if req.ScheduledAt != "" {
		t, err := parseTime(req.ScheduledAt)
		if err != nil {
			return nil, err
		}
		notif.ScheduledAt = t
	}
	if req.ExpiresAt != "" {
		t, err := parseTime(req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		notif.ExpiresAt = t
	}
	notif.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, notif); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return toItem(notif), nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, id string) error {
	if id == "" {
		return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	// 删除不存在的 ID 是幂等空操作，不报错
	if _, err := s.repo.Delete(ctx, id); err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	s.invalidateStats(ctx, "")
	return nil
}

func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, id string) error {
	if id == "" {
		return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	// 先确认存在，已读重复标记是幂等成功
	if _, err := s.repo.GetByNotificationId(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xerr.New(xerr.NotFound, "通知不存在")
		}
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	s.invalidateStats(ctx, "")
	return nil
}

func (s *notificationServiceImpl) MarkManyAsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return xerr.New(xerr.BadRequest, "notificationIds 不能为空")
	}
	if err := s.repo.MarkManyRead(ctx, ids); err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	s.invalidateStats(ctx, "")
	return nil
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, recipientId string) error {
	if err := s.repo.MarkAllRead(ctx, recipientId); err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	s.invalidateStats(ctx, recipientId)
	return nil
}

func (s *notificationServiceImpl) Stats(ctx context.Context, recipientId string) (*repository.Stats, error) {
	// 统计允许一定的新鲜度容忍，优先走 Redis 缓存
	key := statsCacheKey + recipientId
	if pkgRedis.IsConnected() {
		if cached, err := pkgRedis.Get(ctx, key); err == nil {
			var stats repository.Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.repo.Count(ctx, recipientId)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	if pkgRedis.IsConnected() {
		if b, err := json.Marshal(stats); err == nil {
			_ = pkgRedis.Set(ctx, key, string(b), s.statsCacheTTL)
		}
	}
	return stats, nil
}

// invalidateStats 写操作后使统计缓存失效
func (s *notificationServiceImpl) invalidateStats(ctx context.Context, recipientId string) {
	if !pkgRedis.IsConnected() {
		return
	}
	keys := []string{statsCacheKey}
	if recipientId != "" {
		keys = append(keys, statsCacheKey+recipientId)
	}
	_, _ = pkgRedis.Del(ctx, keys...)
}

func (s *notificationServiceImpl) SendBulk(ctx context.Context, req request.SendBulkRequest) (*respond.SendBulkRespond, error) {
	if req.Title == "" || req.Message == "" {
		return nil, xerr.New(xerr.BadRequest, "title/message 不能为空")
	}
	notifType := req.Type
	if notifType == "" {
		notifType = entity.TypeSystem
	}
	if _, ok := entity.ValidTypes[notifType]; !ok {
		return nil, xerr.New(xerr.BadRequest, "不支持的通知类型")
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.DefaultPriority(notifType)
	}
	if _, ok := entity.ValidPriorities[priority]; !ok {
		return nil, xerr.New(xerr.BadRequest, "不支持的优先级")
	}

	scheduledAt, err := parseTime(req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	// 解析接收者集合
	var recipients []string
	switch {
	case req.RecipientType == entity.RecipientTypeAll:
		ids, err := s.userRepo.ListActiveUserIds()
		if err != nil {
			zlog.Error(err.Error())
			return nil, xerr.ErrServerError
		}
		recipients = ids
	case len(req.RecipientIds) > 0:
		briefs, err := s.userRepo.GetUserBriefByUUIDs(req.RecipientIds)
		if err != nil {
			zlog.Error(err.Error())
			return nil, xerr.ErrServerError
		}
		for _, b := range briefs {
			if b.Status == 0 {
				recipients = append(recipients, b.Uuid)
			}
		}
	default:
		return nil, xerr.New(xerr.BadRequest, "recipientIds 或 recipientType 必须指定其一")
	}

	// 空集合是校验错误，不产生任何通知
	if len(recipients) == 0 {
		return nil, xerr.New(xerr.BadRequest, "接收者集合为空")
	}

	now := time.Now()
	notifs := make([]*entity.Notification, 0, len(recipients))
	for _, uid := range recipients {
		notifs = append(notifs, &entity.Notification{
			NotificationId: util.GenerateNotificationID(),
			Title:          req.Title,
			Message:        req.Message,
			Type:           notifType,
			Priority:       priority,
			RecipientId:    uid,
			RecipientType:  entity.RecipientTypeUser,
			ScheduledAt:    scheduledAt,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.repo.CreateBatch(ctx, notifs); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	s.invalidateStats(ctx, "")

	if scheduledAt == nil || !scheduledAt.After(now) {
		delivered := make([]int64, 0, len(notifs))
		for _, n := range notifs {
			s.push(ctx, n)
			delivered = append(delivered, n.Id)
		}
		_ = s.repo.MarkDelivered(ctx, delivered)
	}

	return &respond.SendBulkRespond{Accepted: len(notifs)}, nil
}

func (s *notificationServiceImpl) DeliverDueScheduled(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	due, err := s.repo.GetDueScheduled(ctx, time.Now(), limit)
	if err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(due))
	for _, n := range due {
		s.push(ctx, n)
		ids = append(ids, n.Id)
	}
	if err := s.repo.MarkDelivered(ctx, ids); err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}
	s.invalidateStats(ctx, "")
	return len(due), nil
}

func (s *notificationServiceImpl) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	before := time.Now().AddDate(0, 0, -retentionDays)
	purged, err := s.repo.PurgeExpired(ctx, before)
	if err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}
	if purged > 0 {
		s.invalidateStats(ctx, "")
	}
	return purged, nil
}
