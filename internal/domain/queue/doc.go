// Package queue models durable background work: work items, their tagged
// task payloads, retry backoff and the store contract used by the coordinator.
package queue
