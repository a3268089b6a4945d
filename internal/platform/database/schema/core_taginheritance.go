package schema

// TagInheritanceTable represents the 'core.taginheritance' table.
//
// A row is the explicit inheritance marker: tenant TenantID has opted into
// the platform-scoped tag TagID. Without a row the platform tag is
// completely invisible to that tenant.
type TagInheritanceTable struct {
	Table     string
	ID        string
	TagID     string
	TenantID  string
	CreatedAt string
}

// TagInheritance is the schema definition for core.taginheritance
var TagInheritance = TagInheritanceTable{
	Table:     "core.taginheritance",
	ID:        "id",
	TagID:     "tagid",
	TenantID:  "tenantid",
	CreatedAt: "createdat",
}

func (t TagInheritanceTable) Columns() []string {
	return []string{t.ID, t.TagID, t.TenantID, t.CreatedAt}
}
