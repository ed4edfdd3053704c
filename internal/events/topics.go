package events

// Topics emitted by the domain services.
const (
	TopicSaleRecorded   = "sale.recorded"
	TopicOrderCreated   = "order.created"
	TopicOrderDelivered = "order.delivered"
	TopicOrderCanceled  = "order.canceled"
	TopicCashRecorded   = "cash.recorded"
)
