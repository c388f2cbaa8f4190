package types

// HeartbeatRequest is sent by a hub every few seconds.  The hub itself is
// identified by its API token, never by a field in the body.
type HeartbeatRequest struct {
	FirmwareVersion string `json:"firmware_version,omitempty"`
	UptimeSeconds   uint64 `json:"uptime_s,omitempty"`
	IP              string `json:"ip,omitempty"`
}

type HeartbeatResponse struct {
	OK         bool   `json:"ok"`
	HubID      string `json:"hub_id"`
	ServerTime string `json:"server_time"`
}

// AccessEventRequest reports a code entered at one of the hub's points.
// The point is addressed by PointID or, when that is empty, by its
// Position on the hub.
type AccessEventRequest struct {
	PointID  string `json:"point_id,omitempty"`
	Position int    `json:"position,omitempty"`
	Code     string `json:"code"`
	AtMs     int64  `json:"at_ms,omitempty"` // device clock, optional
}

type AccessEventResponse struct {
	OK         bool   `json:"ok"`
	Access     string `json:"access"`
	Granted    bool   `json:"granted"`
	PointID    string `json:"point_id"`
	EventID    string `json:"event_id"`
	ServerTime string `json:"server_time"`
}
