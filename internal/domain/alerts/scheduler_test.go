package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/entity"
	"wareflow/internal/core/id"
	"wareflow/internal/domain"
	"wareflow/internal/domain/documents/entry"
)

type fakeEntryStore struct {
	entries map[id.ID]*entry.PurchaseEntry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[id.ID]*entry.PurchaseEntry)}
}

func (s *fakeEntryStore) add(e *entry.PurchaseEntry) *entry.PurchaseEntry {
	e.BaseEntity = entity.NewBaseEntity()
	s.entries[e.ID] = e
	return e
}

func (s *fakeEntryStore) Create(ctx context.Context, e *entry.PurchaseEntry) error {
	s.entries[e.ID] = e
	return nil
}

func (s *fakeEntryStore) GetByID(ctx context.Context, entryID id.ID) (*entry.PurchaseEntry, error) {
	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("entry", entryID.String())
	}
	return e, nil
}

func (s *fakeEntryStore) GetByEntryNo(ctx context.Context, entryNo string) (*entry.PurchaseEntry, error) {
	return nil, apperror.NewNotFound("entry", entryNo)
}

func (s *fakeEntryStore) Update(ctx context.Context, e *entry.PurchaseEntry) error { return nil }

func (s *fakeEntryStore) List(ctx context.Context, f entry.ListFilter) (domain.ListResult[*entry.PurchaseEntry], error) {
	return domain.ListResult[*entry.PurchaseEntry]{}, nil
}

func (s *fakeEntryStore) ExistsBySupplierBillNo(ctx context.Context, billNo string) (bool, error) {
	return false, nil
}

func (s *fakeEntryStore) MarkDeleted(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	return false, nil
}

func (s *fakeEntryStore) MarkRecovered(ctx context.Context, entryID id.ID, at time.Time) (bool, error) {
	return false, nil
}

func (s *fakeEntryStore) DeletePermanent(ctx context.Context, entryID id.ID) (bool, error) {
	return false, nil
}

func (s *fakeEntryStore) ListDueForAlert(ctx context.Context, deadline time.Time) ([]*entry.PurchaseEntry, error) {
	var due []*entry.PurchaseEntry
	for _, e := range s.entries {
		if e.CreditDaysLimit > 0 && !e.AlertTriggered && !e.DueDate().After(deadline) {
			due = append(due, e)
		}
	}
	return due, nil
}

func (s *fakeEntryStore) MarkAlertTriggered(ctx context.Context, entryID id.ID) (bool, error) {
	e, ok := s.entries[entryID]
	if !ok {
		return false, apperror.NewNotFound("entry", entryID.String())
	}
	if e.AlertTriggered {
		return false, nil
	}
	e.AlertTriggered = true
	return true, nil
}

type fakeNotifier struct {
	sent    []string
	failFor map[string]error
}

func (n *fakeNotifier) Notify(ctx context.Context, recipient string, e *entry.PurchaseEntry) error {
	if err, ok := n.failFor[e.EntryNo]; ok {
		return err
	}
	n.sent = append(n.sent, e.EntryNo)
	return nil
}

type fixedRecipient string

func (r fixedRecipient) AlertRecipient(ctx context.Context) (string, error) {
	return string(r), nil
}

type failingRecipient struct{}

func (failingRecipient) AlertRecipient(ctx context.Context) (string, error) {
	return "", errors.New("admin account not found")
}

func testEntry(entryNo string, daysAgo, creditDays int) *entry.PurchaseEntry {
	return &entry.PurchaseEntry{
		EntryNo:         entryNo,
		SupplierBillNo:  "B-" + entryNo,
		SupplierCode:    "ACME",
		Date:            time.Now().UTC().AddDate(0, 0, -daysAgo),
		CreditDaysLimit: creditDays,
	}
}

func TestRunOnce_NotifiesExpiringEntries(t *testing.T) {
	store := newFakeEntryStore()
	notifier := &fakeNotifier{}

	// Credit expired 0 days ago: must alert
	expired := store.add(testEntry("WF-0001", 10, 10))
	// Expires in 2 days: within the 3-day lookahead
	closeCall := store.add(testEntry("WF-0002", 8, 10))
	// Expires in 30 days: outside lookahead
	store.add(testEntry("WF-0003", 0, 30))
	// No credit: never alerted
	store.add(testEntry("WF-0004", 10, 0))

	s := NewScheduler(store, notifier, fixedRecipient("admin@wareflow.local"))
	require.NoError(t, s.RunOnce(context.Background()))

	assert.ElementsMatch(t, []string{"WF-0001", "WF-0002"}, notifier.sent)
	assert.True(t, expired.AlertTriggered)
	assert.True(t, closeCall.AlertTriggered)
}

func TestRunOnce_SecondRunDoesNotRenotify(t *testing.T) {
	store := newFakeEntryStore()
	notifier := &fakeNotifier{}
	store.add(testEntry("WF-0001", 10, 10))

	s := NewScheduler(store, notifier, fixedRecipient("admin@wareflow.local"))
	require.NoError(t, s.RunOnce(context.Background()))
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Len(t, notifier.sent, 1)
}

func TestRunOnce_FailedSendRetriedNextRun(t *testing.T) {
	store := newFakeEntryStore()
	e := store.add(testEntry("WF-0001", 10, 10))
	notifier := &fakeNotifier{failFor: map[string]error{"WF-0001": errors.New("smtp down")}}

	s := NewScheduler(store, notifier, fixedRecipient("admin@wareflow.local"))
	require.NoError(t, s.RunOnce(context.Background()))

	assert.False(t, e.AlertTriggered)
	assert.Empty(t, notifier.sent)

	// Delivery recovers; the next run picks the entry up again
	notifier.failFor = nil
	require.NoError(t, s.RunOnce(context.Background()))

	assert.True(t, e.AlertTriggered)
	assert.Equal(t, []string{"WF-0001"}, notifier.sent)
}

func TestRunOnce_FailedSendDoesNotBlockOthers(t *testing.T) {
	store := newFakeEntryStore()
	store.add(testEntry("WF-0001", 10, 10))
	healthy := store.add(testEntry("WF-0002", 12, 10))
	notifier := &fakeNotifier{failFor: map[string]error{"WF-0001": errors.New("smtp down")}}

	s := NewScheduler(store, notifier, fixedRecipient("admin@wareflow.local"))
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, []string{"WF-0002"}, notifier.sent)
	assert.True(t, healthy.AlertTriggered)
}

func TestRunOnce_MissingRecipientFailsClosed(t *testing.T) {
	store := newFakeEntryStore()
	e := store.add(testEntry("WF-0001", 10, 10))
	notifier := &fakeNotifier{}

	s := NewScheduler(store, notifier, failingRecipient{})
	err := s.RunOnce(context.Background())

	require.Error(t, err)
	assert.Empty(t, notifier.sent)
	assert.False(t, e.AlertTriggered)
}

func TestRunOnce_EmptyRecipientFailsClosed(t *testing.T) {
	store := newFakeEntryStore()
	store.add(testEntry("WF-0001", 10, 10))
	notifier := &fakeNotifier{}

	s := NewScheduler(store, notifier, fixedRecipient(""))
	err := s.RunOnce(context.Background())

	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}
