package taproom

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

// AddKeg creates a new stock line. The keg is only visible in the projection
// once the store write has succeeded and assigned it an id.
func (t *Taproom) AddKeg(ctx context.Context, beerName string, size model.KegSize, quantity int) (*model.Keg, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	beerName = strings.TrimSpace(beerName)

	switch {
	case beerName == "":
		return nil, countErr("add_keg", fmt.Errorf("%w: beer name must not be empty", ErrInvalidArgument))
	case !size.Valid():
		return nil, countErr("add_keg", fmt.Errorf("%w: unknown keg size %q", ErrInvalidArgument, size))
	case quantity < 0:
		return nil, countErr("add_keg", fmt.Errorf("%w: quantity must not be negative", ErrInvalidArgument))
	}

	keg := model.Keg{BeerName: beerName, Size: size, Quantity: quantity}

	id, err := t.kegStore.CreateKeg(ctx, keg)
	if err != nil {
		return nil, countErr("add_keg", persistence("creating keg", err))
	}

	keg.ID = id
	t.kegs[id] = &keg
	t.kegOrder = append(t.kegOrder, id)

	t.logger.Info("keg added",
		zap.String("keg_id", id), zap.String("beer", beerName),
		zap.String("size", string(size)), zap.Int("quantity", quantity))
	countOp("add_keg", nil)

	return copyKeg(&keg), nil
}

// IncrementQuantity adds one container to the stock line. If the keg sits on
// a tap whose last-keg flag no longer matches, the flag is recomputed as part
// of the same operation.
func (t *Taproom) IncrementQuantity(ctx context.Context, kegID string) (*model.Keg, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keg, ok := t.kegs[kegID]
	if !ok {
		return nil, countErr("increment", fmt.Errorf("%w: keg %s", ErrNotFound, kegID))
	}

	newQuantity := keg.Quantity + 1

	if err := t.kegStore.UpdateKeg(ctx, kegID, map[string]any{model.FieldQuantity: newQuantity}); err != nil {
		return nil, countErr("increment", persistence("updating keg quantity", err))
	}

	if err := t.syncLastKeg(ctx, keg, newQuantity); err != nil {
		return nil, countErr("increment", err)
	}

	keg.Quantity = newQuantity
	countOp("increment", nil)

	return copyKeg(keg), nil
}

// DecrementOrRemove kicks one container off the stock line. At quantity
// above one it decrements; at one or below it is the terminal kick: the keg
// is unassigned from its tap (if any) and deleted. The boolean reports
// removal, in which case the returned keg is nil.
func (t *Taproom) DecrementOrRemove(ctx context.Context, kegID string) (*model.Keg, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keg, removed, err := t.decrementOrRemove(ctx, kegID)

	return keg, removed, countErr("kick", err)
}

func (t *Taproom) decrementOrRemove(ctx context.Context, kegID string) (*model.Keg, bool, error) {
	keg, ok := t.kegs[kegID]
	if !ok {
		return nil, false, fmt.Errorf("%w: keg %s", ErrNotFound, kegID)
	}

	if keg.Quantity > 1 {
		newQuantity := keg.Quantity - 1

		if err := t.kegStore.UpdateKeg(ctx, kegID, map[string]any{model.FieldQuantity: newQuantity}); err != nil {
			return nil, false, persistence("updating keg quantity", err)
		}

		if err := t.syncLastKeg(ctx, keg, newQuantity); err != nil {
			return nil, false, err
		}

		keg.Quantity = newQuantity

		return copyKeg(keg), false, nil
	}

	// Terminal kick. Unassign first so the tap never points at a deleted
	// keg; if the delete then fails the keg survives unassigned at its last
	// container and the kick can simply be retried.
	if keg.OnTap && keg.TapNumber != nil {
		if err := t.unassign(ctx, *keg.TapNumber); err != nil {
			return nil, false, err
		}
	}

	if err := t.kegStore.DeleteKeg(ctx, kegID); err != nil {
		return nil, false, persistence("deleting keg", err)
	}

	delete(t.kegs, kegID)

	for i, id := range t.kegOrder {
		if id == kegID {
			t.kegOrder = append(t.kegOrder[:i], t.kegOrder[i+1:]...)

			break
		}
	}

	t.logger.Info("keg kicked", zap.String("keg_id", kegID), zap.String("beer", keg.BeerName))

	return nil, true, nil
}

// syncLastKeg writes the tap-side last-keg flag implied by quantity, without
// committing anything to the projection. Callers commit the quantity only
// after this has succeeded.
func (t *Taproom) syncLastKeg(ctx context.Context, keg *model.Keg, quantity int) error {
	if !keg.OnTap || keg.TapNumber == nil {
		return nil
	}

	tap, ok := t.taps[*keg.TapNumber]
	if !ok {
		return nil
	}

	last := quantity <= 1
	if tap.IsLastKeg == last {
		return nil
	}

	if err := t.tapStore.UpsertTap(ctx, tap.Number, map[string]any{model.FieldIsLastKeg: last}); err != nil {
		return persistence("updating last-keg flag", err)
	}

	tap.IsLastKeg = last

	return nil
}

func copyKeg(keg *model.Keg) *model.Keg {
	cp := *keg
	if cp.TapNumber != nil {
		n := *cp.TapNumber
		cp.TapNumber = &n
	}

	return &cp
}

func persistence(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, action, err)
}
