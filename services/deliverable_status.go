package services

import (
	"time"

	"discovery-api/models"
)

// DeriveDeliverableStatus classifies a deliverable from its deadline and upload
// time. It is the only place the rule lives; create, update, upload, list and
// the deadline sweeper all call it.
//
// With an upload: received_ontime when uploadedAt <= deadline (or there is no
// deadline), late otherwise. Without one: late once now is past the deadline,
// upcoming while the deadline is more than dueSoon away, pending in between
// and when no deadline is set.
func DeriveDeliverableStatus(deadline, uploadedAt *time.Time, now time.Time, dueSoon time.Duration) models.DeliverableStatus {
	if uploadedAt != nil {
		if deadline == nil || !uploadedAt.After(*deadline) {
			return models.DeliverableReceivedOnTime
		}
		return models.DeliverableLate
	}

	if deadline == nil {
		return models.DeliverablePending
	}
	if now.After(*deadline) {
		return models.DeliverableLate
	}
	if deadline.Sub(now) > dueSoon {
		return models.DeliverableUpcoming
	}
	return models.DeliverablePending
}
