package models

// GeneratePayload is the asynq payload for a background slot generation run.
type GeneratePayload struct {
	ServiceID    string `json:"serviceId"`
	HorizonStart string `json:"horizonStart"` // "2006-01-02"
	HorizonEnd   string `json:"horizonEnd"`
}

// ReprocessPayload is the asynq payload for availability-change reprocessing.
type ReprocessPayload struct {
	ServiceID string `json:"serviceId"`
	Actor     string `json:"actor"`
}

// NotifyPayload is the asynq payload for a fire-and-forget notification.
type NotifyPayload struct {
	Event    string            `json:"event"`
	ClientID string            `json:"clientId"`
	Contact  string            `json:"contact,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}
