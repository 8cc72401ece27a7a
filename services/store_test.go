package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory RecordStore for tests, with per-operation failure
// injection. Records are held by pointer, so mutations after a write are
// visible — same as holding a row in a test transaction.
type memStore struct {
	records map[string]map[string]any // collection -> id -> record
	nextID  int
	failOn  map[string]error // "op:collection" -> injected error
}

func newMemStore() *memStore {
	return &memStore{
		records: map[string]map[string]any{},
		failOn:  map[string]error{},
	}
}

func (m *memStore) failWith(op, collection string, err error) {
	m.failOn[op+":"+collection] = err
}

func (m *memStore) collection(name string) map[string]any {
	if m.records[name] == nil {
		m.records[name] = map[string]any{}
	}
	return m.records[name]
}

func (m *memStore) count(collection string) int {
	return len(m.records[collection])
}

func (m *memStore) CreateRecord(collection string, record any) (string, error) {
	if err := m.failOn["create:"+collection]; err != nil {
		return "", err
	}
	id := ""
	if ider, ok := record.(identifiable); ok {
		if ider.GetID() == "" {
			m.nextID++
			ider.SetID(fmt.Sprintf("gen-%d", m.nextID))
		}
		id = ider.GetID()
	}
	m.collection(collection)[id] = record
	return id, nil
}

func (m *memStore) SetRecord(collection string, id string, record any) error {
	if err := m.failOn["set:"+collection]; err != nil {
		return err
	}
	if ider, ok := record.(identifiable); ok {
		ider.SetID(id)
	}
	m.collection(collection)[id] = record
	return nil
}

func (m *memStore) UpdateRecord(collection string, record any) error {
	if err := m.failOn["update:"+collection]; err != nil {
		return err
	}
	if ider, ok := record.(identifiable); ok {
		m.collection(collection)[ider.GetID()] = record
	}
	return nil
}

func (m *memStore) DeleteRecord(collection string, id string) error {
	if err := m.failOn["delete:"+collection]; err != nil {
		return err
	}
	delete(m.collection(collection), id)
	return nil
}

func TestGormRecordStoreRejectsUnknownCollection(t *testing.T) {
	// prototype() runs before any DB access, so a nil DB is safe here.
	s := NewGormRecordStore(nil)

	_, err := s.CreateRecord("wallets", &struct{}{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallets")

	assert.Error(t, s.SetRecord("wallets", "x", &struct{}{}))
	assert.Error(t, s.UpdateRecord("wallets", &struct{}{}))
	assert.Error(t, s.DeleteRecord("wallets", "x"))
}
