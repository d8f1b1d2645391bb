package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/peluqueria-anita/salon-api/internal/audit"
)

// writeAudit queues an audit event for a change made directly by a handler.
func writeAudit(
	d *audit.Dispatcher,
	c *gin.Context,
	action string,
	entity string,
	entityID *uint,
	meta any,
) {
	d.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: meta,
	})
}
