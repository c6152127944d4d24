package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/internal/modules/notification/domain/entity"
	"WrapDesk/internal/modules/notification/infrastructure/mq"
	"WrapDesk/pkg/zlog"

	"go.uber.org/zap"
)

// BusinessEvent 业务系统（订单/安装/设计/客户）发出的领域事件
type BusinessEvent struct {
	EventType   string `json:"event_type"` // 如 order.created / installation.scheduled
	EntityId    string `json:"entity_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	RecipientId string `json:"recipient_id"` // 为空表示广播给全部后台账号
	Priority    string `json:"priority"`
}

// EventConsumerWorker 消费业务事件并落库为通知
type EventConsumerWorker struct {
	consumer mq.Consumer
	svc      service.NotificationService
}

func NewEventConsumerWorker(consumer mq.Consumer, svc service.NotificationService) *EventConsumerWorker {
	return &EventConsumerWorker{consumer: consumer, svc: svc}
}

func (w *EventConsumerWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.svc == nil {
		return errors.New("notification service is nil")
	}
	return w.consumer.Run(ctx, w)
}

// notifTypeOf 按事件类型前缀映射通知类型
func notifTypeOf(eventType string) (string, bool) {
	prefix, _, ok := strings.Cut(eventType, ".")
	if !ok {
		return "", false
	}
	switch prefix {
	case "order":
		return entity.TypeOrder, true
	case "installation":
		return entity.TypeInstallation, true
	case "design":
		return entity.TypeDesign, true
	case "customer":
		return entity.TypeCustomer, true
	case "system":
		return entity.TypeSystem, true
	default:
		return "", false
	}
}

func (w *EventConsumerWorker) Handle(ctx context.Context, msg mq.Message) error {
	var ev BusinessEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		// 脏消息直接丢弃，避免卡死分区
		zlog.Warn("business event unmarshal failed", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}

	eventType := strings.TrimSpace(ev.EventType)
	notifType, ok := notifTypeOf(eventType)
	if !ok {
		zlog.Warn("unknown business event type", zap.String("event_type", eventType))
		return nil
	}

	title := strings.TrimSpace(ev.Title)
	if title == "" {
		title = eventType
	}
	message := strings.TrimSpace(ev.Message)
	if message == "" {
		message = eventType + " " + strings.TrimSpace(ev.EntityId)
	}

	_, err := w.svc.Create(ctx, request.CreateNotificationRequest{
		Title:             title,
		Message:           message,
		Type:              notifType,
		Priority:          strings.TrimSpace(ev.Priority),
		RecipientId:       strings.TrimSpace(ev.RecipientId),
		RelatedEntityId:   strings.TrimSpace(ev.EntityId),
		RelatedEntityType: notifType,
	})
	if err != nil {
		zlog.Warn("business event to notification failed",
			zap.String("event_type", eventType),
			zap.String("entity_id", strings.TrimSpace(ev.EntityId)),
			zap.Error(err),
		)
		// 校验类错误不重试
		return nil
	}
	return nil
}
