package enums

// OutboxEventType enumerates the domain events this service emits.
type OutboxEventType string

const (
	OutboxEventVersionCreated OutboxEventType = "catalog.version.created"
	OutboxEventSyncCompleted  OutboxEventType = "branch.sync.completed"
	OutboxEventSyncFailed     OutboxEventType = "branch.sync.failed"
)

// OutboxAggregateType identifies the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateCatalog  OutboxAggregateType = "master_catalog"
	OutboxAggregateSyncLink OutboxAggregateType = "branch_sync_link"
)
