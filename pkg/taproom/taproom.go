// Package taproom holds the inventory and tap-assignment engines. Both
// operate on a single in-memory projection of the keg and tap collections,
// write through to the backing stores, and only commit a mutation to the
// projection once every store write for that operation has succeeded. A
// failed write therefore leaves the projection at its last consistent state
// and the whole operation is safe to retry.
package taproom

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

const DefaultTapCount = 12

// KegStore is the durable keg collection. Update applies only the fields
// present in the map and must not clobber the rest.
type KegStore interface {
	ListKegs(ctx context.Context) ([]model.Keg, error)
	CreateKeg(ctx context.Context, keg model.Keg) (string, error)
	UpdateKeg(ctx context.Context, id string, fields map[string]any) error
	DeleteKeg(ctx context.Context, id string) error
}

// TapStore is the durable tap collection, one record per tap number.
// UpsertTap with a nil or empty field map ensures the record exists without
// touching any existing field.
type TapStore interface {
	ListTaps(ctx context.Context) ([]model.Tap, error)
	UpsertTap(ctx context.Context, number int, fields map[string]any) error
}

// TapStatus is a tap with its assigned keg resolved against the projection.
type TapStatus struct {
	Number    int
	Keg       *model.Keg
	IsLastKeg bool
}

type Taproom struct {
	kegStore KegStore
	tapStore TapStore
	logger   *zap.Logger

	mu       sync.Mutex
	tapCount int
	kegs     map[string]*model.Keg
	kegOrder []string
	taps     map[int]*model.Tap
}

func New(kegStore KegStore, tapStore TapStore, tapCount int, logger *zap.Logger) *Taproom {
	if tapCount <= 0 {
		tapCount = DefaultTapCount
	}

	t := &Taproom{
		kegStore: kegStore,
		tapStore: tapStore,
		logger:   logger,
		tapCount: tapCount,
		kegs:     make(map[string]*model.Keg),
		taps:     make(map[int]*model.Tap),
	}

	for i := 1; i <= tapCount; i++ {
		t.taps[i] = &model.Tap{Number: i}
	}

	return t
}

func (t *Taproom) TapCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.tapCount
}

// Kegs returns the projected keg list in insertion order.
func (t *Taproom) Kegs() []model.Keg {
	t.mu.Lock()
	defer t.mu.Unlock()

	kegs := make([]model.Keg, 0, len(t.kegOrder))

	for _, id := range t.kegOrder {
		keg := *t.kegs[id]
		if keg.TapNumber != nil {
			n := *keg.TapNumber
			keg.TapNumber = &n
		}

		kegs = append(kegs, keg)
	}

	return kegs
}

// Taps returns every tap slot with its assigned keg resolved.
func (t *Taproom) Taps() []TapStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	taps := make([]TapStatus, 0, t.tapCount)

	for i := 1; i <= t.tapCount; i++ {
		tap := t.taps[i]
		status := TapStatus{Number: i, IsLastKeg: tap.IsLastKeg}

		if tap.AssignedKegID != nil {
			if keg, ok := t.kegs[*tap.AssignedKegID]; ok {
				kegCopy := *keg
				if kegCopy.TapNumber != nil {
					n := *kegCopy.TapNumber
					kegCopy.TapNumber = &n
				}

				status.Keg = &kegCopy
			}
		}

		taps = append(taps, status)
	}

	return taps
}

// Load rebuilds the projection from both stores and reconciles the tap
// records' non-owning keg references against the freshly loaded keg list.
// A tap referring to a keg that no longer exists, or to a keg another tap
// already holds, is treated as unassigned; the keg side of every surviving
// assignment is taken from the tap side, which is authoritative. Repair
// writes for drift found during reconciliation are best effort: the
// projection is consistent either way and the next mutating operation on the
// record will converge it.
func (t *Taproom) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	kegList, err := t.kegStore.ListKegs(ctx)
	if err != nil {
		countOp("load", err)

		return persistence("listing kegs", err)
	}

	tapList, err := t.tapStore.ListTaps(ctx)
	if err != nil {
		countOp("load", err)

		return persistence("listing taps", err)
	}

	kegs := make(map[string]*model.Keg, len(kegList))
	order := make([]string, 0, len(kegList))

	for i := range kegList {
		keg := kegList[i]
		if _, ok := kegs[keg.ID]; ok {
			t.logger.Warn("duplicate keg record ignored", zap.String("keg_id", keg.ID))

			continue
		}

		keg.OnTap = false
		keg.TapNumber = nil
		kegs[keg.ID] = &keg
		order = append(order, keg.ID)
	}

	taps := make(map[int]*model.Tap, t.tapCount)
	for i := 1; i <= t.tapCount; i++ {
		taps[i] = &model.Tap{Number: i}
	}

	for i := range tapList {
		stored := tapList[i]
		if stored.Number < 1 || stored.Number > t.tapCount {
			t.logger.Warn("tap record outside configured range ignored", zap.Int("tap", stored.Number))

			continue
		}

		taps[stored.Number] = &model.Tap{
			Number:        stored.Number,
			AssignedKegID: stored.AssignedKegID,
			IsLastKeg:     stored.IsLastKeg,
		}
	}

	claimed := make(map[string]int)

	for i := 1; i <= t.tapCount; i++ {
		tap := taps[i]
		if tap.AssignedKegID == nil {
			if tap.IsLastKeg {
				tap.IsLastKeg = false
				t.repairTap(ctx, i, map[string]any{model.FieldIsLastKeg: false})
			}

			continue
		}

		kegID := *tap.AssignedKegID

		keg, ok := kegs[kegID]
		if !ok {
			t.logger.Warn("tap references missing keg, treating as unassigned",
				zap.Int("tap", i), zap.String("keg_id", kegID))
			tap.AssignedKegID = nil
			tap.IsLastKeg = false
			t.repairTap(ctx, i, map[string]any{model.FieldAssignedKegID: nil, model.FieldIsLastKeg: false})

			continue
		}

		if holder, dup := claimed[kegID]; dup {
			t.logger.Warn("keg referenced by two taps, keeping lower number",
				zap.String("keg_id", kegID), zap.Int("kept", holder), zap.Int("cleared", i))
			tap.AssignedKegID = nil
			tap.IsLastKeg = false
			t.repairTap(ctx, i, map[string]any{model.FieldAssignedKegID: nil, model.FieldIsLastKeg: false})

			continue
		}

		claimed[kegID] = i
		keg.OnTap = true
		n := i
		keg.TapNumber = &n

		if last := keg.Quantity <= 1; tap.IsLastKeg != last {
			tap.IsLastKeg = last
			t.repairTap(ctx, i, map[string]any{model.FieldIsLastKeg: last})
		}
	}

	t.kegs = kegs
	t.kegOrder = order
	t.taps = taps

	countOp("load", nil)

	return nil
}

func (t *Taproom) repairTap(ctx context.Context, number int, fields map[string]any) {
	if err := t.tapStore.UpsertTap(ctx, number, fields); err != nil {
		t.logger.Warn("tap repair write failed", zap.Int("tap", number), zap.Error(err))
	}
}
