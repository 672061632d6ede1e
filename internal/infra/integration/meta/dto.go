package meta

// Payload de la Conversions API de Meta.
// https://developers.facebook.com/docs/marketing-api/conversions-api

type serverEvent struct {
	EventName    string         `json:"event_name"`
	EventTime    int64          `json:"event_time"`
	ActionSource string         `json:"action_source"`
	CustomData   map[string]any `json:"custom_data,omitempty"`
}

type eventRequest struct {
	Data []serverEvent `json:"data"`
}

type eventResponse struct {
	EventsReceived int    `json:"events_received"`
	FBTraceID      string `json:"fbtrace_id"`
}
