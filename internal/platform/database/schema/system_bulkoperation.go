package schema

// BulkOperationTable represents the 'system.bulkoperation' table
type BulkOperationTable struct {
	Table          string
	ID             string
	Kind           string
	Status         string
	TenantID       string
	Scope          string
	TotalItems     string
	ProcessedItems string
	FailedItems    string
	CreatedBy      string
	CreatedAt      string
	UpdatedAt      string
	StartedAt      string
	FinishedAt     string
}

// BulkOperation is the schema definition for system.bulkoperation
var BulkOperation = BulkOperationTable{
	Table:          "system.bulkoperation",
	ID:             "id",
	Kind:           "kind",
	Status:         "status",
	TenantID:       "tenantid",
	Scope:          "scope",
	TotalItems:     "totalitems",
	ProcessedItems: "processeditems",
	FailedItems:    "faileditems",
	CreatedBy:      "createdby",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	StartedAt:      "startedat",
	FinishedAt:     "finishedat",
}

// BulkOperationItemTable represents the 'system.bulkoperationitem' table
type BulkOperationItemTable struct {
	Table       string
	ID          string
	OperationID string
	TagID       string
	Status      string
	Error       string
	UpdatedAt   string
}

// BulkOperationItem is the schema definition for system.bulkoperationitem
var BulkOperationItem = BulkOperationItemTable{
	Table:       "system.bulkoperationitem",
	ID:          "id",
	OperationID: "operationid",
	TagID:       "tagid",
	Status:      "status",
	Error:       "error",
	UpdatedAt:   "updatedat",
}
