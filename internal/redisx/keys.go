package redisx

import "time"

const (
	// Order status cache: order_status:{order_id} -> order JSON
	KeyOrderStatus = "order_status:%s"
)

var TTLStatusCache = 5 * time.Minute
