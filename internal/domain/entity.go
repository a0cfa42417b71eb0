package domain

// EntityType discriminates the kinds of shareable entities. Collaboration,
// notifications and access checks treat them identically.
type EntityType string

const (
	EntityTask      EntityType = "task"
	EntityVitalTask EntityType = "vital_task"
)

func (t EntityType) Valid() bool {
	return t == EntityTask || t == EntityVitalTask
}

// EntityRef points at one shareable entity without caring which kind it is.
type EntityRef struct {
	Type EntityType `json:"entity_type"`
	ID   uint64     `json:"entity_id"`
}
