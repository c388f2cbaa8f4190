package types

import (
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

type HubView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	HeartbeatAt *time.Time      `json:"heartbeatAt"`
	Connection  access.Liveness `json:"connectionStatus"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// HubDetail lists the hub's points by position.
type HubDetail struct {
	HubView
	Points []PointSummary `json:"accessPoints"`
}

// HubRaw is the admin view of a hub: every point with its users.
type HubRaw struct {
	HubView
	Points []PointView `json:"accessPoints"`
}

type PointSummary struct {
	ID          string    `json:"id"`
	HubID       string    `json:"accessHubId"`
	HubName     string    `json:"accessHubName"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type PointView struct {
	PointSummary
	AccessUsers []AccessUserView `json:"accessUsers"`
}

type PointDetail struct {
	PointView
	Hub HubView `json:"accessHub"`
}

type AccessUserView struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Code           string            `json:"code"`
	ActivateCodeAt *time.Time        `json:"activateCodeAt"`
	ExpireCodeAt   *time.Time        `json:"expireCodeAt"`
	CodeStatus     access.Evaluation `json:"codeStatus"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type AccessUserDetail struct {
	AccessUserView
	Points []PointSummary `json:"accessPoints"`
}

type ActivityEntry struct {
	ID             string          `json:"id"`
	PointID        string          `json:"accessPointId"`
	PointName      string          `json:"accessPointName"`
	At             time.Time       `json:"at"`
	Access         access.Decision `json:"access"`
	Code           string          `json:"code"`
	AccessUserID   *string         `json:"accessUserId"`
	AccessUserName string          `json:"accessUserName,omitempty"`
}

type Counts struct {
	Grant int `json:"grant"`
	Deny  int `json:"deny"`
	Total int `json:"total"`
}

func CountsOf(c access.Counts) Counts {
	return Counts{Grant: c.Grant, Deny: c.Deny, Total: c.Total()}
}

type DashboardPoint struct {
	PointSummary
	Counts Counts `json:"counts"`
}

type DashboardHub struct {
	HubView
	Totals Counts           `json:"totals"`
	Points []DashboardPoint `json:"accessPoints"`
}

type Dashboard struct {
	Window      string         `json:"window"`
	WindowStart time.Time      `json:"windowStart"`
	Hubs        []DashboardHub `json:"accessHubs"`
}

type CustomerView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type CustomerDetail struct {
	CustomerView
	AccessUsers []AccessUserView `json:"accessUsers"`
	Hubs        []HubView        `json:"accessHubs"`
}
