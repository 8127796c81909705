package taproom_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

// fakeKegStore and fakeTapStore are stateful in-memory stand-ins for the
// document backends, with one-shot failure injection for testing the
// rollback discipline.
type fakeKegStore struct {
	mu     sync.Mutex
	docs   map[string]model.Keg
	order  []string
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	updateCalls int
}

func newFakeKegStore() *fakeKegStore {
	return &fakeKegStore{docs: make(map[string]model.Keg)}
}

func (f *fakeKegStore) ListKegs(_ context.Context) ([]model.Keg, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErr; err != nil {
		f.listErr = nil

		return nil, err
	}

	kegs := make([]model.Keg, 0, len(f.order))
	for _, id := range f.order {
		kegs = append(kegs, f.docs[id])
	}

	return kegs, nil
}

func (f *fakeKegStore) CreateKeg(_ context.Context, keg model.Keg) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createErr; err != nil {
		f.createErr = nil

		return "", err
	}

	f.nextID++
	id := fmt.Sprintf("keg-%d", f.nextID)
	keg.ID = id
	f.docs[id] = keg
	f.order = append(f.order, id)

	return id, nil
}

func (f *fakeKegStore) UpdateKeg(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++

	if err := f.updateErr; err != nil {
		f.updateErr = nil

		return err
	}

	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("keg %s: no such document", id)
	}

	for key, value := range fields {
		switch key {
		case model.FieldBeerName:
			doc.BeerName = value.(string)
		case model.FieldSize:
			doc.Size = model.KegSize(value.(string))
		case model.FieldQuantity:
			doc.Quantity = value.(int)
		case model.FieldOnTap:
			doc.OnTap = value.(bool)
		case model.FieldTapNumber:
			if value == nil {
				doc.TapNumber = nil
			} else {
				n := value.(int)
				doc.TapNumber = &n
			}
		default:
			return fmt.Errorf("unexpected keg field %q", key)
		}
	}

	f.docs[id] = doc

	return nil
}

func (f *fakeKegStore) DeleteKeg(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.deleteErr; err != nil {
		f.deleteErr = nil

		return err
	}

	if _, ok := f.docs[id]; !ok {
		return fmt.Errorf("keg %s: no such document", id)
	}

	delete(f.docs, id)

	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)

			break
		}
	}

	return nil
}

func (f *fakeKegStore) get(id string) (model.Keg, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]

	return doc, ok
}

func (f *fakeKegStore) put(keg model.Keg) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.docs[keg.ID]; !ok {
		f.order = append(f.order, keg.ID)
	}

	f.docs[keg.ID] = keg
}

type fakeTapStore struct {
	mu   sync.Mutex
	docs map[int]model.Tap

	listErr   error
	upsertErr error

	upsertCalls int
}

func newFakeTapStore() *fakeTapStore {
	return &fakeTapStore{docs: make(map[int]model.Tap)}
}

func (f *fakeTapStore) ListTaps(_ context.Context) ([]model.Tap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErr; err != nil {
		f.listErr = nil

		return nil, err
	}

	taps := make([]model.Tap, 0, len(f.docs))
	for _, doc := range f.docs {
		taps = append(taps, doc)
	}

	return taps, nil
}

func (f *fakeTapStore) UpsertTap(_ context.Context, number int, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertCalls++

	if err := f.upsertErr; err != nil {
		f.upsertErr = nil

		return err
	}

	doc, ok := f.docs[number]
	if !ok {
		doc = model.Tap{Number: number}
	}

	for key, value := range fields {
		switch key {
		case model.FieldAssignedKegID:
			if value == nil {
				doc.AssignedKegID = nil
			} else {
				id := value.(string)
				doc.AssignedKegID = &id
			}
		case model.FieldIsLastKeg:
			doc.IsLastKeg = value.(bool)
		default:
			return fmt.Errorf("unexpected tap field %q", key)
		}
	}

	f.docs[number] = doc

	return nil
}

func (f *fakeTapStore) get(number int) (model.Tap, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[number]

	return doc, ok
}

func (f *fakeTapStore) put(tap model.Tap) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs[tap.Number] = tap
}
