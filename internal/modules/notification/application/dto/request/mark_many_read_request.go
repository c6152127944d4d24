package request

type MarkManyReadRequest struct {
	NotificationIds []string `json:"notificationIds"`
}
