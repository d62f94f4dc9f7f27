package deltacrown

// CountResponse mirrors the {count: n} payloads of the counter endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// NotificationCounts is the notification sync snapshot. The stream pushes
// exactly this shape; pull mode assembles it from two endpoints.
type NotificationCounts struct {
	UnreadNotifications   int `json:"unread_notifications"`
	PendingFollowRequests int `json:"pending_follow_requests"`
}
