package enums

import "fmt"

// DeliveryStatus tracks the lifecycle of a scheduled delivery.
type DeliveryStatus string

const (
	DeliveryStatusScheduled      DeliveryStatus = "scheduled"
	DeliveryStatusPreparing      DeliveryStatus = "preparing"
	DeliveryStatusOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryStatusDelivered      DeliveryStatus = "delivered"
	DeliveryStatusCanceled       DeliveryStatus = "canceled"
	DeliveryStatusOverdue        DeliveryStatus = "overdue"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusScheduled,
	DeliveryStatusPreparing,
	DeliveryStatusOutForDelivery,
	DeliveryStatusDelivered,
	DeliveryStatusCanceled,
	DeliveryStatusOverdue,
}

// deliveryStatusTransitions enumerates the allowed manual transitions.
// Overdue is only entered by the cron worker; it can still be resolved
// to delivered or canceled by a merchant afterwards.
var deliveryStatusTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusScheduled:      {DeliveryStatusPreparing, DeliveryStatusOutForDelivery, DeliveryStatusDelivered, DeliveryStatusCanceled},
	DeliveryStatusPreparing:      {DeliveryStatusOutForDelivery, DeliveryStatusDelivered, DeliveryStatusCanceled},
	DeliveryStatusOutForDelivery: {DeliveryStatusDelivered},
	DeliveryStatusOverdue:        {DeliveryStatusOutForDelivery, DeliveryStatusDelivered, DeliveryStatusCanceled},
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further manual transition is allowed.
func (d DeliveryStatus) IsTerminal() bool {
	return d == DeliveryStatusDelivered || d == DeliveryStatusCanceled
}

// CanTransitionTo reports whether a manual move from d to next is allowed.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range deliveryStatusTransitions[d] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw strings into DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
