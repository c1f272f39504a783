package entity

import "time"

// DeliveryStatus tracks the lifecycle of one outbound email attempt.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = iota
	DeliveryStatusQueued
	DeliveryStatusSent
	DeliveryStatusFailed
)

func (d DeliveryStatus) String() string {
	switch d {
	case DeliveryStatusQueued:
		return "queued"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type CreateDeliveryLog struct {
	ID        int64
	Email     string
	UserClass string
	Subject   string
	Status    DeliveryStatus
	CreatedAt time.Time
}

type UpdateDeliveryLog struct {
	ID          int64
	Status      DeliveryStatus
	LastError   *string
	DeliveredAt *time.Time
}
