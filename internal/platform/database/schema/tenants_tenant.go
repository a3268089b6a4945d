package schema

// TenantTable represents the 'tenants.tenant' table
type TenantTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	Status    string
	Plan      string
	CreatedAt string
	UpdatedAt string
}

// Tenant is the schema definition for tenants.tenant
var Tenant = TenantTable{
	Table:     "tenants.tenant",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	Status:    "status",
	Plan:      "plan",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t TenantTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Status, t.Plan, t.CreatedAt, t.UpdatedAt}
}
