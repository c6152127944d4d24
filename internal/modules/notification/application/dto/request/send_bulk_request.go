package request

type SendBulkRequest struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Type          string   `json:"type"`
	Priority      string   `json:"priority"`
	RecipientIds  []string `json:"recipientIds"`
	RecipientType string   `json:"recipientType"` // 'all' 表示全员
	ScheduledAt   string   `json:"scheduledAt"`
}
