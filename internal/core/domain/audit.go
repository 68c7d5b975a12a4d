package domain

import "time"

// AuditEvent records who changed what. Written asynchronously by the audit
// dispatcher; losing an entry is logged but never fails the triggering request.
type AuditEvent struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Actor     string    `json:"actor" bson:"actor"`
	ActorRole string    `json:"actorRole" bson:"actorRole"`
	Action    string    `json:"action" bson:"action"` // create, update, delete, login, ...
	Entity    string    `json:"entity" bson:"entity"` // customer, plan, invoice, ...
	EntityID  string    `json:"entityId" bson:"entityId"`
	Details   string    `json:"details,omitempty" bson:"details,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
