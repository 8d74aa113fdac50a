package entity

// NotificationResult reports the outcome of a bounded-retry notification.
type NotificationResult struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
}

// DeliveryStatus maps the outcome onto the lead's terminal status.
func (r NotificationResult) DeliveryStatus() DeliveryStatus {
	if r.Success {
		return DeliverySent
	}
	return DeliveryFailed
}
