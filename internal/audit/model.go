// Package audit implements the append-only Audit Writer (C7): a record of
// every privileged mutation in C2/C3/C4, with query and retention.
package audit

import "time"

// Record is the persisted shape, generalized from the teacher's
// logs.AuditLog (which was scoped to {UserID,Resource}) to the spec's
// free-form {actor,module} shape.
type Record struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	Actor     string         `gorm:"column:actor;not null;index:idx_audit_actor"`
	Action    string         `gorm:"column:action;not null;index:idx_audit_action"`
	Module    string         `gorm:"column:module;not null;index:idx_audit_module_created"`
	Details   map[string]any `gorm:"column:details;serializer:json"`
	IPAddress string         `gorm:"column:ip_address"`
	CreatedAt time.Time      `gorm:"column:created_at;index:idx_audit_module_created"`
}

func (Record) TableName() string { return "audit_log" }

// Filter is the query contract from spec §4.7: any subset of these fields
// may be set; zero value means "no constraint" on that field.
type Filter struct {
	Actor  string
	Action string
	Module string
	Start  *time.Time
	End    *time.Time
	Limit  int
	Offset int
}

// ModuleCount is one row of Stats' per-module breakdown.
type ModuleCount struct {
	Module string `json:"module"`
	Count  int64  `json:"count"`
}

// Stats is the last-N-days summary from spec §4.7.
type Stats struct {
	ByModule []ModuleCount `json:"byModule"`
	Recent   []Record      `json:"recent"`
}
