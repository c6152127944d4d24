package request

type UpdateNotificationRequest struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	ScheduledAt string `json:"scheduledAt"`
	ExpiresAt   string `json:"expiresAt"`
}
