// Package rabbitmq publishes account notification events to RabbitMQ, where
// the email sender consumes them.
package rabbitmq
