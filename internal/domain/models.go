package domain

import (
	"github.com/google/uuid"
	"time"
)

// Enums для статусів
type DeviceStatus string
type AlertType string
type AlertSeverity string
type AlertStatus string
type CampaignStatus string
type NodeStatus string
type SurvivorProbability string
type UserRole string

const (
	// Статуси пристроїв
	DeviceStatusOnline   DeviceStatus = "online"
	DeviceStatusOffline  DeviceStatus = "offline"
	DeviceStatusWarning  DeviceStatus = "warning"
	DeviceStatusCritical DeviceStatus = "critical"

	// Типи тривог
	AlertTypeThreshold  AlertType = "sensor_threshold"
	AlertTypeSOS        AlertType = "sos"
	AlertTypeBatteryLow AlertType = "battery_low"
	AlertTypeManual     AlertType = "manual_report"

	// Рівні серйозності тривог
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"

	// Статуси тривог
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"

	// Статуси кампаній
	CampaignStatusInitiated  CampaignStatus = "initiated"
	CampaignStatusAssigned   CampaignStatus = "assigned"
	CampaignStatusAccepted   CampaignStatus = "accepted"
	CampaignStatusEnRoute    CampaignStatus = "en_route"
	CampaignStatusOnScene    CampaignStatus = "on_scene"
	CampaignStatusInProgress CampaignStatus = "in_progress"
	CampaignStatusResolved   CampaignStatus = "resolved"
	CampaignStatusCancelled  CampaignStatus = "cancelled"

	// Статуси вузлів у межах кампанії
	NodeStatusPending    NodeStatus = "pending"
	NodeStatusAssigned   NodeStatus = "assigned"
	NodeStatusInProgress NodeStatus = "in_progress"
	NodeStatusRescued    NodeStatus = "rescued"

	// Рівні ймовірності наявності вцілілих
	ProbabilityNone     SurvivorProbability = "none"
	ProbabilityLow      SurvivorProbability = "low"
	ProbabilityModerate SurvivorProbability = "moderate"
	ProbabilityHigh     SurvivorProbability = "high"

	// Ролі користувачів
	RoleAdmin   UserRole = "admin"
	RoleRescuer UserRole = "rescuer"
	RolePublic  UserRole = "public"
)

// ManualReportDeviceID використовується для тривог, створених вручну без прив'язки до вузла
const ManualReportDeviceID = "manual"

// Location представляє географічні координати
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Device представляє фізичний вузол mesh-мережі
type Device struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       DeviceStatus `json:"status"`
	BatteryLevel int          `json:"battery_level"`
	Location     Location     `json:"location"`
	LastSeenAt   time.Time    `json:"last_seen_at"`
	CreatedAt    time.Time    `json:"created_at"`
}

// SensorReading представляє один телеметричний вимір з вузла.
// Незмінний після створення.
type SensorReading struct {
	DeviceID    string    `json:"device_id"`
	NodeNum     int       `json:"node_num"`
	CO2         float64   `json:"co2"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Location    Location  `json:"location"`
	GPSFix      int       `json:"gps_fix"`
	Timestamp   time.Time `json:"timestamp"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Alert представляє подію, що вимагає уваги оператора
type Alert struct {
	ID             uuid.UUID     `json:"id"`
	DeviceID       string        `json:"device_id"`
	Type           AlertType     `json:"type"`
	Severity       AlertSeverity `json:"severity"`
	Status         AlertStatus   `json:"status"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Location       *Location     `json:"location,omitempty"`
	TriggeredAt    time.Time     `json:"triggered_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string        `json:"acknowledged_by,omitempty"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	SurvivorCount  *int          `json:"survivor_count,omitempty"`
}

// StatusHistoryEntry представляє один запис журналу статусів кампанії.
// Журнал append-only: записи не редагуються та не видаляються.
type StatusHistoryEntry struct {
	Status    CampaignStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Note      string         `json:"note,omitempty"`
	UpdatedBy string         `json:"updated_by,omitempty"`
}

// CampaignNote представляє нотатку оператора або рятувальника
type CampaignNote struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// NodeAssignment представляє підзадачу порятунку одного вузла в межах кампанії
type NodeAssignment struct {
	NodeID         string     `json:"node_id"`
	DeviceID       string     `json:"device_id"`
	AlertID        *uuid.UUID `json:"alert_id,omitempty"`
	RescuerIDs     []string   `json:"rescuer_ids"`
	Location       Location   `json:"location"`
	Status         NodeStatus `json:"status"`
	RescuedAt      *time.Time `json:"rescued_at,omitempty"`
	RescuedBy      string     `json:"rescued_by,omitempty"`
	SurvivorsFound int        `json:"survivors_found"`
}

// Campaign представляє рятувальну операцію, що охоплює один або декілька вузлів
type Campaign struct {
	ID                  uuid.UUID            `json:"id"`
	Name                string               `json:"name,omitempty"`
	Description         string               `json:"description,omitempty"`
	Status              CampaignStatus       `json:"status"`
	AlertIDs            []uuid.UUID          `json:"alert_ids"`
	AssignedRescuerIDs  []string             `json:"assigned_rescuer_ids"`
	NodeAssignments     []NodeAssignment     `json:"node_assignments"`
	TotalSurvivorsFound int                  `json:"total_survivors_found"`
	Location            Location             `json:"location"`
	StatusHistory       []StatusHistoryEntry `json:"status_history"`
	Notes               []CampaignNote       `json:"notes"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	ResolvedAt          *time.Time           `json:"resolved_at,omitempty"`
}

// IsTerminal повідомляє, чи є статус кампанії термінальним
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusResolved || s == CampaignStatusCancelled
}

// PrimaryRescuerID повертає першого призначеного рятувальника.
// Похідний аксесор для споживачів, що очікують застаріле однозначне поле.
func (c *Campaign) PrimaryRescuerID() string {
	if len(c.AssignedRescuerIDs) == 0 {
		return ""
	}
	return c.AssignedRescuerIDs[0]
}

// PrimaryAlertID повертає першу прив'язану тривогу кампанії
func (c *Campaign) PrimaryAlertID() *uuid.UUID {
	if len(c.AlertIDs) == 0 {
		return nil
	}
	id := c.AlertIDs[0]
	return &id
}

// HasRescuer перевіряє, чи призначений рятувальник на кампанію
func (c *Campaign) HasRescuer(rescuerID string) bool {
	for _, id := range c.AssignedRescuerIDs {
		if id == rescuerID {
			return true
		}
	}
	return false
}

// Node шукає вузол кампанії за його ідентифікатором
func (c *Campaign) Node(nodeID string) *NodeAssignment {
	for i := range c.NodeAssignments {
		if c.NodeAssignments[i].NodeID == nodeID {
			return &c.NodeAssignments[i]
		}
	}
	return nil
}

// User представляє зареєстрованого користувача системи
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        UserRole  `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Actor представляє вже автентифікованого користувача, що виконує операцію.
// Ідентичність надходить із зовнішнього провайдера і не перевіряється повторно.
type Actor struct {
	ID          string
	DisplayName string
	Role        UserRole
}

// DashboardStats представляє агреговані показники для головної панелі
type DashboardStats struct {
	TotalUsers      int `json:"total_users"`
	TotalDevices    int `json:"total_devices"`
	DevicesOnline   int `json:"devices_online"`
	DevicesOffline  int `json:"devices_offline"`
	ActiveAlerts    int `json:"active_alerts"`
	ActiveCampaigns int `json:"active_campaigns"`
}

// CampaignStats представляє агреговані показники рятувальних операцій
type CampaignStats struct {
	TotalCampaigns    int `json:"total_campaigns"`
	ActiveCampaigns   int `json:"active_campaigns"`
	ResolvedCampaigns int `json:"resolved_campaigns"`
	DeployedNodes     int `json:"deployed_nodes"`
	DeployedRescuers  int `json:"deployed_rescuers"`
	TotalSurvivors    int `json:"total_survivors"`
}

// RescuerPerformance представляє показники одного рятувальника для звітності
type RescuerPerformance struct {
	RescuerID      string `json:"rescuer_id"`
	DisplayName    string `json:"display_name"`
	NodesAssigned  int    `json:"nodes_assigned"`
	NodesRescued   int    `json:"nodes_rescued"`
	SurvivorsFound int    `json:"survivors_found"`
}
