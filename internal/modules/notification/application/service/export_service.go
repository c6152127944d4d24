package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"WrapDesk/internal/modules/notification/application/dto/request"
	"WrapDesk/internal/modules/notification/domain/repository"
	"WrapDesk/pkg/xerr"
	"WrapDesk/pkg/zlog"
)

// ExportFile 导出结果
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService 通知导出，支持 csv / json 两种格式
type ExportService interface {
	Export(ctx context.Context, recipientId string, format string, req request.ListNotificationsRequest) (*ExportFile, error)
}

type exportServiceImpl struct {
	repo repository.NotificationRepository
}

func NewExportService(repo repository.NotificationRepository) ExportService {
	return &exportServiceImpl{repo: repo}
}

func (s *exportServiceImpl) Export(ctx context.Context, recipientId string, format string, req request.ListNotificationsRequest) (*ExportFile, error) {
	if format != "csv" && format != "json" {
		return nil, xerr.New(xerr.BadRequest, "不支持的导出格式: "+format)
	}

	filter, err := buildFilter(recipientId, req)
	if err != nil {
		return nil, err
	}
	// 导出不分页，包含尚未投递/已过期的行，供后台对账
	filter.Page = 0
	filter.PageSize = 0
	filter.IncludeInactive = true

	notifs, _, err := s.repo.List(ctx, filter)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	stamp := time.Now().Format("20060102_150405")

	if format == "json" {
		items := make([]interface{}, 0, len(notifs))
		for i := range notifs {
			items = append(items, toItem(&notifs[i]))
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			zlog.Error(err.Error())
			return nil, xerr.ErrServerError
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("notifications_%s.json", stamp),
			ContentType: "application/json",
			Data:        data,
		}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "title", "message", "type", "priority", "isRead", "recipientId", "relatedEntityId", "relatedEntityType", "scheduledAt", "expiresAt", "createdAt"}
	if err := w.Write(header); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	for i := range notifs {
		n := &notifs[i]
		scheduled := ""
		if n.ScheduledAt != nil {
			scheduled = n.ScheduledAt.Format(time.RFC3339)
		}
		expires := ""
		if n.ExpiresAt != nil {
			expires = n.ExpiresAt.Format(time.RFC3339)
		}
		row := []string{
			n.NotificationId,
			n.Title,
			n.Message,
			n.Type,
			n.Priority,
			strconv.FormatBool(n.IsRead),
			n.RecipientId,
			n.RelatedEntityId,
			n.RelatedEntityType,
			scheduled,
			expires,
			n.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			zlog.Error(err.Error())
			return nil, xerr.ErrServerError
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("notifications_%s.csv", stamp),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}
