// Package events publishes catalog change events to a RabbitMQ exchange.
//
// Each persisted create, update or delete becomes one JSON message on a
// durable fanout exchange, routed as "book.<operation>". Publishing runs on
// its own goroutine behind a bounded queue so a slow or unreachable broker
// never holds up a request; events that do not fit are dropped and logged.
package events
