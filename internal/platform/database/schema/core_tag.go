package schema

// TagTable represents the 'core.tag' table
type TagTable struct {
	Table       string
	ID          string
	TenantID    string
	Scope       string
	ParentID    string
	Name        string
	Slug        string
	Description string
	Category    string
	UsageCount  string
	IsActive    string
	IsSystem    string
	IsFeatured  string
	CreatedAt   string
	UpdatedAt   string
}

// Tag is the schema definition for core.tag
var Tag = TagTable{
	Table:       "core.tag",
	ID:          "id",
	TenantID:    "tenantid",
	Scope:       "scope",
	ParentID:    "parentid",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	Category:    "category",
	UsageCount:  "usagecount",
	IsActive:    "isactive",
	IsSystem:    "issystem",
	IsFeatured:  "isfeatured",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t TagTable) Columns() []string {
	return []string{
		t.ID, t.TenantID, t.Scope, t.ParentID, t.Name, t.Slug, t.Description,
		t.Category, t.UsageCount, t.IsActive, t.IsSystem, t.IsFeatured,
		t.CreatedAt, t.UpdatedAt,
	}
}
