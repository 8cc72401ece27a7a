package services

import (
	"errors"
	"testing"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInMovesSignupToRoster(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)

	event := &models.Event{ID: "ev1"}
	signup := &models.Signup{
		ID:               models.SignupID("ev1", "p1"),
		EventID:          "ev1",
		PlayerID:         "p1",
		RequestedItemIDs: []string{"gear-aeg"},
		Note:             "first timer",
	}
	store.collection(CollectionSignups)[signup.ID] = signup

	attendee, res := r.CheckIn(event, signup)

	require.True(t, res.Applied)
	assert.NoError(t, res.Err)
	require.NotNil(t, attendee)
	assert.Equal(t, models.PaymentUnpaid, attendee.PaymentStatus)
	assert.Equal(t, []string{"gear-aeg"}, attendee.RentedItemIDs)
	assert.Equal(t, "first timer", attendee.Note)

	require.Len(t, event.Attendees, 1)
	assert.Equal(t, 1, store.count(CollectionAttendees))
	assert.Equal(t, 0, store.count(CollectionSignups), "signup is destroyed on check-in")
}

func TestCheckInNoOpWithoutSignup(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{ID: "ev1"}

	attendee, res := r.CheckIn(event, nil)
	assert.Nil(t, attendee)
	assert.False(t, res.Applied)

	// A signup for a different event is also a no-op.
	attendee, res = r.CheckIn(event, &models.Signup{ID: "ev2_p1", EventID: "ev2", PlayerID: "p1"})
	assert.Nil(t, attendee)
	assert.False(t, res.Applied)
	assert.Empty(t, event.Attendees)
	assert.Equal(t, 0, store.count(CollectionAttendees))
}

func TestCheckInAlreadyOnRosterIsSettled(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{
		ID:        "ev1",
		Attendees: []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
	}

	attendee, res := r.CheckIn(event, &models.Signup{ID: "ev1_p1", EventID: "ev1", PlayerID: "p1"})

	require.NotNil(t, attendee)
	assert.Equal(t, "at1", attendee.ID)
	assert.False(t, res.Applied)
	assert.Len(t, event.Attendees, 1)
	assert.Equal(t, 0, store.count(CollectionAttendees), "no writes for a settled check-in")
}

func TestCheckInReportsAttendeeWriteFailure(t *testing.T) {
	store := newMemStore()
	store.failWith("create", CollectionAttendees, errors.New("disk full"))
	r := NewReconciler(store)
	event := &models.Event{ID: "ev1"}

	attendee, res := r.CheckIn(event, &models.Signup{ID: "ev1_p1", EventID: "ev1", PlayerID: "p1"})

	require.NotNil(t, attendee)
	assert.True(t, res.Applied, "in-memory transfer happened before the write")
	assert.Equal(t, CollectionAttendees, res.WriteFailed)
	assert.Error(t, res.Err)
	assert.Len(t, event.Attendees, 1, "in-memory view keeps the attendee")
}

func TestCheckInReportsSignupDeleteFailure(t *testing.T) {
	store := newMemStore()
	store.failWith("delete", CollectionSignups, errors.New("timeout"))
	r := NewReconciler(store)
	event := &models.Event{ID: "ev1"}

	_, res := r.CheckIn(event, &models.Signup{ID: "ev1_p1", EventID: "ev1", PlayerID: "p1"})

	assert.True(t, res.Applied)
	assert.Equal(t, CollectionSignups, res.WriteFailed)
	assert.Equal(t, 1, store.count(CollectionAttendees), "attendee row landed before the failure")
}

func TestCheckOutRestoresDeterministicSignup(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{
		ID: "ev1",
		Attendees: []models.Attendee{
			{ID: "at1", EventID: "ev1", PlayerID: "p1", RentedItemIDs: []string{"gear-mask"}, Note: "rental pending"},
		},
	}
	store.collection(CollectionAttendees)["at1"] = &event.Attendees[0]

	signup, res := r.CheckOut(event, "p1")

	require.True(t, res.Applied)
	assert.NoError(t, res.Err)
	require.NotNil(t, signup)
	assert.Equal(t, models.SignupID("ev1", "p1"), signup.ID)
	assert.Equal(t, []string{"gear-mask"}, signup.RequestedItemIDs)
	assert.Equal(t, "rental pending", signup.Note)

	assert.Empty(t, event.Attendees)
	assert.Equal(t, 0, store.count(CollectionAttendees))
	assert.Equal(t, 1, store.count(CollectionSignups))
}

func TestCheckInCheckOutRoundTrip(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{ID: "ev1"}
	original := &models.Signup{
		ID:               models.SignupID("ev1", "p1"),
		EventID:          "ev1",
		PlayerID:         "p1",
		RequestedItemIDs: []string{"gear-aeg", "gear-mask"},
		Note:             "needs chrono",
	}

	_, res := r.CheckIn(event, original)
	require.True(t, res.Applied)

	restored, res := r.CheckOut(event, "p1")
	require.True(t, res.Applied)

	assert.Equal(t, original.ID, restored.ID, "same identity across the cycle")
	assert.Equal(t, original.RequestedItemIDs, restored.RequestedItemIDs)
	assert.Equal(t, original.Note, restored.Note)
	assert.Empty(t, event.Attendees)
}

func TestCheckOutNoOpWhenNotCheckedIn(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{ID: "ev1"}

	signup, res := r.CheckOut(event, "p1")
	assert.Nil(t, signup)
	assert.False(t, res.Applied)
	assert.Equal(t, 0, store.count(CollectionSignups))
}

func TestCheckOutReportsSignupWriteFailure(t *testing.T) {
	store := newMemStore()
	store.failWith("set", CollectionSignups, errors.New("timeout"))
	r := NewReconciler(store)
	event := &models.Event{
		ID:        "ev1",
		Attendees: []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
	}

	signup, res := r.CheckOut(event, "p1")

	require.NotNil(t, signup)
	assert.True(t, res.Applied)
	assert.Equal(t, CollectionSignups, res.WriteFailed)
	assert.Empty(t, event.Attendees, "in-memory removal is unconditional")
}

func TestSetPaymentStatus(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(store)
	event := &models.Event{
		ID:        "ev1",
		Attendees: []models.Attendee{{ID: "at1", EventID: "ev1", PlayerID: "p1"}},
	}

	attendee, res := r.SetPaymentStatus(event, "p1", models.PaymentPaidCash)
	require.True(t, res.Applied)
	require.NotNil(t, attendee)
	assert.Equal(t, models.PaymentPaidCash, attendee.PaymentStatus)
	assert.Equal(t, models.PaymentPaidCash, event.Attendees[0].PaymentStatus)

	// Unknown status: no-op, nothing mutated.
	attendee, res = r.SetPaymentStatus(event, "p1", "iou")
	assert.Nil(t, attendee)
	assert.False(t, res.Applied)
	assert.Equal(t, models.PaymentPaidCash, event.Attendees[0].PaymentStatus)

	// Not checked in: no-op.
	attendee, res = r.SetPaymentStatus(event, "p2", models.PaymentPaidCard)
	assert.Nil(t, attendee)
	assert.False(t, res.Applied)
}
