package request

type CreateNotificationRequest struct {
	Title             string `json:"title"`
	Message           string `json:"message"`
	Type              string `json:"type"`
	Priority          string `json:"priority"`
	RecipientId       string `json:"recipientId"`       // 为空表示广播
	RecipientType     string `json:"recipientType"`
	RelatedEntityId   string `json:"relatedEntityId"`
	RelatedEntityType string `json:"relatedEntityType"`
	ScheduledAt       string `json:"scheduledAt"` // RFC3339，可选
	ExpiresAt         string `json:"expiresAt"`   // RFC3339，可选
}
