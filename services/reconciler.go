package services

import (
	"log"
	"time"

	"bosjol-tactical/models"

	"github.com/google/uuid"
)

// Reconciler maintains the signup/attendee mutual-exclusion invariant for a
// single event: a player is in at most one of the two collections at any
// time. Check-in moves the record from the waiting room (signups) to the
// roster (attendees); check-out moves it back.
//
// Operations mutate the passed event's attendee list first and persist
// second, so the caller's in-memory view is current even when a write fails.
// The ReconcileResult says which phase (if any) went wrong; there is no
// compensating rollback.
type Reconciler struct {
	Store RecordStore
}

func NewReconciler(store RecordStore) *Reconciler {
	return &Reconciler{Store: store}
}

// ReconcileResult reports the outcome of a two-phase check-in/check-out.
type ReconcileResult struct {
	Applied     bool   // precondition held and the in-memory transfer happened
	WriteFailed string // "" or the collection whose write failed
	Err         error
}

// CheckIn converts a signup into an attendee. No-op when the player has no
// signup for the event. The new attendee starts unpaid, carrying over the
// signup's requested gear and note.
func (r *Reconciler) CheckIn(event *models.Event, signup *models.Signup) (*models.Attendee, ReconcileResult) {
	if signup == nil || signup.EventID != event.ID {
		return nil, ReconcileResult{} // nothing to check in
	}
	// Already on the roster: treat as settled.
	for i := range event.Attendees {
		if event.Attendees[i].PlayerID == signup.PlayerID {
			return &event.Attendees[i], ReconcileResult{}
		}
	}

	attendee := models.Attendee{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		PlayerID:      signup.PlayerID,
		PaymentStatus: models.PaymentUnpaid,
		RentedItemIDs: append([]string(nil), signup.RequestedItemIDs...),
		Note:          signup.Note,
		CheckedInAt:   time.Now(),
	}
	event.Attendees = append(event.Attendees, attendee)

	if _, err := r.Store.CreateRecord(CollectionAttendees, &attendee); err != nil {
		return &attendee, ReconcileResult{Applied: true, WriteFailed: CollectionAttendees, Err: err}
	}
	if err := r.Store.DeleteRecord(CollectionSignups, signup.ID); err != nil {
		// Attendee row exists but the signup lingers: the collections have
		// diverged until a retry or finalization cleanup.
		log.Printf("[RECONCILE] check-in of %s wrote attendee but failed to delete signup %s: %v",
			signup.PlayerID, signup.ID, err)
		return &attendee, ReconcileResult{Applied: true, WriteFailed: CollectionSignups, Err: err}
	}
	return &attendee, ReconcileResult{Applied: true}
}

// CheckOut removes a player from the roster and recreates their signup with
// the same deterministic identity, carrying gear and note back. No-op when
// the player is not checked in. The attendee leaves the in-memory list
// regardless of whether either write succeeds.
func (r *Reconciler) CheckOut(event *models.Event, playerID string) (*models.Signup, ReconcileResult) {
	idx := -1
	for i := range event.Attendees {
		if event.Attendees[i].PlayerID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ReconcileResult{} // not checked in
	}
	attendee := event.Attendees[idx]
	event.Attendees = append(event.Attendees[:idx], event.Attendees[idx+1:]...)

	signup := models.Signup{
		ID:               models.SignupID(event.ID, playerID),
		EventID:          event.ID,
		PlayerID:         playerID,
		RequestedItemIDs: append([]string(nil), attendee.RentedItemIDs...),
		Note:             attendee.Note,
	}
	if err := r.Store.SetRecord(CollectionSignups, signup.ID, &signup); err != nil {
		log.Printf("[RECONCILE] check-out of %s failed to recreate signup: %v", playerID, err)
		return &signup, ReconcileResult{Applied: true, WriteFailed: CollectionSignups, Err: err}
	}
	if err := r.Store.DeleteRecord(CollectionAttendees, attendee.ID); err != nil {
		return &signup, ReconcileResult{Applied: true, WriteFailed: CollectionAttendees, Err: err}
	}
	return &signup, ReconcileResult{Applied: true}
}

// SetPaymentStatus updates an attendee's payment state. No signup side
// effects. No-op when the player is not checked in or the status is unknown.
func (r *Reconciler) SetPaymentStatus(event *models.Event, playerID, status string) (*models.Attendee, ReconcileResult) {
	switch status {
	case models.PaymentUnpaid, models.PaymentPaidCard, models.PaymentPaidCash:
	default:
		return nil, ReconcileResult{}
	}
	for i := range event.Attendees {
		if event.Attendees[i].PlayerID == playerID {
			event.Attendees[i].PaymentStatus = status
			if err := r.Store.UpdateRecord(CollectionAttendees, &event.Attendees[i]); err != nil {
				return &event.Attendees[i], ReconcileResult{Applied: true, WriteFailed: CollectionAttendees, Err: err}
			}
			return &event.Attendees[i], ReconcileResult{Applied: true}
		}
	}
	return nil, ReconcileResult{}
}
