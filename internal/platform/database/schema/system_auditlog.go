package schema

// AuditLogTable represents the 'system.auditlog' table
type AuditLogTable struct {
	Table        string
	ID           string
	ActorID      string
	TenantID     string
	Action       string
	ResourceType string
	ResourceID   string
	Detail       string
	CreatedAt    string
}

// AuditLog is the schema definition for system.auditlog
var AuditLog = AuditLogTable{
	Table:        "system.auditlog",
	ID:           "id",
	ActorID:      "actorid",
	TenantID:     "tenantid",
	Action:       "action",
	ResourceType: "resourcetype",
	ResourceID:   "resourceid",
	Detail:       "detail",
	CreatedAt:    "createdat",
}

func (t AuditLogTable) Columns() []string {
	return []string{t.ID, t.ActorID, t.TenantID, t.Action, t.ResourceType, t.ResourceID, t.Detail, t.CreatedAt}
}
