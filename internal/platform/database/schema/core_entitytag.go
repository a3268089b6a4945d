package schema

// EntityTagTable represents the 'core.entitytag' table
type EntityTagTable struct {
	Table      string
	ID         string
	TagID      string
	EntityType string
	EntityID   string
	AddedAt    string
}

// EntityTag is the schema definition for core.entitytag
var EntityTag = EntityTagTable{
	Table:      "core.entitytag",
	ID:         "id",
	TagID:      "tagid",
	EntityType: "entitytype",
	EntityID:   "entityid",
	AddedAt:    "addedat",
}

func (t EntityTagTable) Columns() []string {
	return []string{t.ID, t.TagID, t.EntityType, t.EntityID, t.AddedAt}
}
