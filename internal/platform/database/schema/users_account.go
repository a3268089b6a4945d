package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	Email       string
	Password    string
	DisplayName string
	Role        string
	TenantID    string
	IsActive    string
	CreatedAt   string
	UpdatedAt   string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Email:       "email",
	Password:    "password",
	DisplayName: "displayname",
	Role:        "role",
	TenantID:    "tenantid",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.Email, t.Password, t.DisplayName, t.Role, t.TenantID, t.IsActive, t.CreatedAt, t.UpdatedAt}
}
