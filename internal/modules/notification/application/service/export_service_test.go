package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/domain/entity"
	"WrapDesk/pkg/xerr"
)

func seedExportRepo() *fakeNotifRepo {
	repo := &fakeNotifRepo{}
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	repo.items = []*entity.Notification{
		{
			Id:             1,
			NotificationId: "N001",
			Title:          "新订单",
			Message:        "订单 #42 已创建",
			Type:           entity.TypeOrder,
			Priority:       entity.PriorityMedium,
			RecipientId:    "U1",
			CreatedAt:      now,
		},
		{
			Id:             2,
			NotificationId: "N002",
			Title:          "改色膜施工",
			Message:        "周五上午到店",
			Type:           entity.TypeInstallation,
			Priority:       entity.PriorityHigh,
			IsRead:         true,
			RecipientId:    "U1",
			CreatedAt:      now.Add(time.Hour),
		},
	}
	repo.seq = 2
	return repo
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(seedExportRepo())
	_, err := svc.Export(context.Background(), "U1", "xlsx", request.ListNotificationsRequest{})
	require.Error(t, err)
	assert.True(t, xerr.IsValidationError(err))
}

func TestExportCsv(t *testing.T) {
	svc := NewExportService(seedExportRepo())
	file, err := svc.Export(context.Background(), "U1", "csv", request.ListNotificationsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, file.Filename, ".csv")

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "N001", rows[1][0])
	assert.Equal(t, "false", rows[1][5])
	assert.Equal(t, "true", rows[2][5])
}

func TestExportJson(t *testing.T) {
	svc := NewExportService(seedExportRepo())
	file, err := svc.Export(context.Background(), "U1", "json", request.ListNotificationsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "application/json", file.ContentType)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(file.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "N001", items[0]["id"])
	assert.Equal(t, "order", items[0]["type"])
}

func TestExportAppliesTypeFilter(t *testing.T) {
	svc := NewExportService(seedExportRepo())
	file, err := svc.Export(context.Background(), "U1", "json", request.ListNotificationsRequest{
		Type: entity.TypeInstallation,
	})
	require.NoError(t, err)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(file.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "N002", items[0]["id"])
}
