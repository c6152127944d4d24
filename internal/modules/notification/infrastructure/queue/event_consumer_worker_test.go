package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/application/dto/respond"
	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/internal/modules/notification/domain/entity"
	"WrapDesk/internal/modules/notification/infrastructure/mq"
)

// fakeNotifService 只记录 Create 调用，其余方法不会被 worker 触达
type fakeNotifService struct {
	service.NotificationService
	created   []request.CreateNotificationRequest
	createErr error
}

func (f *fakeNotifService) Create(ctx context.Context, req request.CreateNotificationRequest) (*respond.NotificationItem, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &respond.NotificationItem{Id: "N001"}, nil
}

func TestNotifTypeOf(t *testing.T) {
	cases := []struct {
		event string
		want  string
		ok    bool
	}{
		{"order.created", entity.TypeOrder, true},
		{"installation.scheduled", entity.TypeInstallation, true},
		{"design.approved", entity.TypeDesign, true},
		{"customer.followup", entity.TypeCustomer, true},
		{"system.maintenance", entity.TypeSystem, true},
		{"billing.created", "", false},
		{"order", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := notifTypeOf(tc.event)
		assert.Equal(t, tc.ok, ok, tc.event)
		assert.Equal(t, tc.want, got, tc.event)
	}
}

func TestHandleMapsEventToNotification(t *testing.T) {
	svc := &fakeNotifService{}
	w := NewEventConsumerWorker(nil, svc)

	err := w.Handle(context.Background(), mq.Message{
		Topic: "wrapdesk.events",
		Value: []byte(`{"event_type":"installation.scheduled","entity_id":"I88","title":"施工排期","message":"周五上午到店","recipient_id":"U1","priority":"high"}`),
	})
	require.NoError(t, err)
	require.Len(t, svc.created, 1)

	req := svc.created[0]
	assert.Equal(t, entity.TypeInstallation, req.Type)
	assert.Equal(t, "施工排期", req.Title)
	assert.Equal(t, "周五上午到店", req.Message)
	assert.Equal(t, "U1", req.RecipientId)
	assert.Equal(t, "high", req.Priority)
	assert.Equal(t, "I88", req.RelatedEntityId)
	assert.Equal(t, entity.TypeInstallation, req.RelatedEntityType)
}

func TestHandleDefaultsTitleAndMessage(t *testing.T) {
	svc := &fakeNotifService{}
	w := NewEventConsumerWorker(nil, svc)

	err := w.Handle(context.Background(), mq.Message{
		Value: []byte(`{"event_type":"order.created","entity_id":"O42"}`),
	})
	require.NoError(t, err)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "order.created", svc.created[0].Title)
	assert.Equal(t, "order.created O42", svc.created[0].Message)
}

func TestHandleDropsMalformedMessage(t *testing.T) {
	svc := &fakeNotifService{}
	w := NewEventConsumerWorker(nil, svc)

	// 脏消息不报错，也不产生通知
	err := w.Handle(context.Background(), mq.Message{Value: []byte(`{bad json`)})
	require.NoError(t, err)
	assert.Empty(t, svc.created)
}

func TestHandleDropsUnknownEventType(t *testing.T) {
	svc := &fakeNotifService{}
	w := NewEventConsumerWorker(nil, svc)

	err := w.Handle(context.Background(), mq.Message{
		Value: []byte(`{"event_type":"billing.overdue","title":"x","message":"y"}`),
	})
	require.NoError(t, err)
	assert.Empty(t, svc.created)
}

func TestHandleSwallowsCreateError(t *testing.T) {
	svc := &fakeNotifService{createErr: assert.AnError}
	w := NewEventConsumerWorker(nil, svc)

	err := w.Handle(context.Background(), mq.Message{
		Value: []byte(`{"event_type":"order.created","title":"x","message":"y"}`),
	})
	assert.NoError(t, err)
}

func TestRunRequiresConsumerAndService(t *testing.T) {
	w := NewEventConsumerWorker(nil, &fakeNotifService{})
	assert.Error(t, w.Run(context.Background()))
}
