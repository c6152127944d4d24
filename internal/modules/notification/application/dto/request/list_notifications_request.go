package request

// ListNotificationsRequest 列表查询参数，全部可选，缺省不过滤
type ListNotificationsRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	IsRead    *bool  `form:"isRead"`
	Type      string `form:"type"`
	Priority  string `form:"priority"`
	StartDate string `form:"startDate"` // RFC3339 或 2006-01-02
	EndDate   string `form:"endDate"`
	Search    string `form:"search"`
}
