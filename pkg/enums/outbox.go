package enums

// OutboxEventType is the canonical event_type for rows in outbox_events.
type OutboxEventType string

const (
	EventStockAdjusted    OutboxEventType = "stock_adjusted"
	EventStockSold        OutboxEventType = "stock_sold"
	EventStockTransferred OutboxEventType = "stock_transferred"
)

// OutboxAggregateType names the aggregate an outbox event refers to.
type OutboxAggregateType string

const (
	AggregateProduct OutboxAggregateType = "product"
)
