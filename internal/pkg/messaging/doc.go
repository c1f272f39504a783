// Package messaging is a broker-agnostic publish/consume API.
//
// The audit and code-delivery topics ride on whichever driver the
// messaging.driver config selects (NATS, NSQ, or Kafka) without the modules
// knowing which one is in play.
package messaging
