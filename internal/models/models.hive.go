// FilePath: internal/models/models.hive.go
package models

import "time"

// Hive is a monitored sensor unit belonging to one tenant. Hives are
// managed by the tenant administration tooling; the hub only reads them.
type Hive struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	ApiaryID  string    `json:"apiary_id" db:"apiary_id"`
	Name      string    `json:"name" db:"name"`
	DeviceID  string    `json:"device_id" db:"device_id"` // gateway device identifier, unique when set
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Apiary groups hives at one physical location
type Apiary struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Name     string `json:"name" db:"name"`
}

// User is a tenant member that can receive alerts and reports
type User struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Email    string `json:"email" db:"email"`
}

// HiveOverview is the directory's join of a hive with its apiary name,
// used when evaluating alerts and building reports
type HiveOverview struct {
	ID         string `json:"id" db:"id"`
	TenantID   string `json:"tenant_id" db:"tenant_id"`
	Name       string `json:"name" db:"name"`
	ApiaryName string `json:"apiary_name" db:"apiary_name"`
}
