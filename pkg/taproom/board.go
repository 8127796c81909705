package taproom

import (
	"context"
	"fmt"

	"go.openly.dev/pointy"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

// InitializeTaps idempotently ensures tap slots 1..n exist in the store.
// Existing records keep their assignment: the upsert carries no fields, so
// merge semantics leave them untouched.
func (t *Taproom) InitializeTaps(ctx context.Context, n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 {
		return countErr("initialize_taps", fmt.Errorf("%w: tap count must be positive", ErrInvalidArgument))
	}

	var errs error

	for i := 1; i <= n; i++ {
		if err := t.tapStore.UpsertTap(ctx, i, nil); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tap %d: %v", i, err))

			continue
		}

		if _, ok := t.taps[i]; !ok {
			t.taps[i] = &model.Tap{Number: i}
		}
	}

	if errs != nil {
		return countErr("initialize_taps", fmt.Errorf("%w: initializing taps: %v", ErrPersistence, errs))
	}

	t.tapCount = n
	countOp("initialize_taps", nil)

	return nil
}

// AssignKeg puts a keg on a tap. A keg currently on another tap is moved
// (the old tap ends up unassigned), and a keg already on the requested tap
// is a no-op that still recomputes the last-keg flag. All store writes for
// the move happen before any projection commit, so a failed write leaves the
// projection at its pre-operation state.
func (t *Taproom) AssignKeg(ctx context.Context, tapNumber int, kegID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tapNumber < 1 || tapNumber > t.tapCount {
		return countErr("assign", fmt.Errorf("%w: tap number %d out of range 1..%d", ErrInvalidArgument, tapNumber, t.tapCount))
	}

	keg, ok := t.kegs[kegID]
	if !ok {
		return countErr("assign", fmt.Errorf("%w: keg %s", ErrNotFound, kegID))
	}

	if keg.Quantity == 0 {
		// A zero-quantity keg should already have been kicked; refusing the
		// assignment surfaces the reconciliation drift instead of hiding it.
		return countErr("assign", fmt.Errorf("%w: keg %s is empty and pending kick", ErrInvalidState, kegID))
	}

	tap := t.taps[tapNumber]
	last := keg.Quantity <= 1

	if tap.AssignedKegID != nil && *tap.AssignedKegID == kegID {
		if tap.IsLastKeg != last {
			if err := t.tapStore.UpsertTap(ctx, tapNumber, map[string]any{model.FieldIsLastKeg: last}); err != nil {
				return countErr("assign", persistence("updating last-keg flag", err))
			}

			tap.IsLastKeg = last
		}

		countOp("assign", nil)

		return nil
	}

	var oldTap *model.Tap
	if keg.OnTap && keg.TapNumber != nil && *keg.TapNumber != tapNumber {
		oldTap = t.taps[*keg.TapNumber]
	}

	var displaced *model.Keg
	if tap.AssignedKegID != nil {
		displaced = t.kegs[*tap.AssignedKegID]
	}

	if oldTap != nil {
		fields := map[string]any{model.FieldAssignedKegID: nil, model.FieldIsLastKeg: false}
		if err := t.tapStore.UpsertTap(ctx, oldTap.Number, fields); err != nil {
			return countErr("assign", persistence("clearing previous tap", err))
		}
	}

	if displaced != nil {
		fields := map[string]any{model.FieldOnTap: false, model.FieldTapNumber: nil}
		if err := t.kegStore.UpdateKeg(ctx, displaced.ID, fields); err != nil {
			return countErr("assign", persistence("clearing displaced keg", err))
		}
	}

	tapFields := map[string]any{model.FieldAssignedKegID: kegID, model.FieldIsLastKeg: last}
	if err := t.tapStore.UpsertTap(ctx, tapNumber, tapFields); err != nil {
		return countErr("assign", persistence("assigning tap", err))
	}

	kegFields := map[string]any{model.FieldOnTap: true, model.FieldTapNumber: tapNumber}
	if err := t.kegStore.UpdateKeg(ctx, kegID, kegFields); err != nil {
		return countErr("assign", persistence("updating keg assignment", err))
	}

	if oldTap != nil {
		oldTap.AssignedKegID = nil
		oldTap.IsLastKeg = false
	}

	if displaced != nil {
		displaced.OnTap = false
		displaced.TapNumber = nil
	}

	tap.AssignedKegID = pointy.String(kegID)
	tap.IsLastKeg = last
	keg.OnTap = true
	keg.TapNumber = pointy.Int(tapNumber)

	t.logger.Info("keg assigned",
		zap.Int("tap", tapNumber), zap.String("keg_id", kegID), zap.Bool("last_keg", last))
	countOp("assign", nil)

	return nil
}

// UnassignKeg takes whatever keg the tap holds off the tap.
func (t *Taproom) UnassignKeg(ctx context.Context, tapNumber int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tapNumber < 1 || tapNumber > t.tapCount {
		return countErr("unassign", fmt.Errorf("%w: tap number %d out of range 1..%d", ErrInvalidArgument, tapNumber, t.tapCount))
	}

	return countErr("unassign", t.unassign(ctx, tapNumber))
}

func (t *Taproom) unassign(ctx context.Context, tapNumber int) error {
	tap, ok := t.taps[tapNumber]
	if !ok || tap.AssignedKegID == nil {
		return fmt.Errorf("%w: tap %d", ErrNotAssigned, tapNumber)
	}

	kegID := *tap.AssignedKegID
	keg := t.kegs[kegID]

	fields := map[string]any{model.FieldAssignedKegID: nil, model.FieldIsLastKeg: false}
	if err := t.tapStore.UpsertTap(ctx, tapNumber, fields); err != nil {
		return persistence("clearing tap", err)
	}

	if keg != nil {
		fields := map[string]any{model.FieldOnTap: false, model.FieldTapNumber: nil}
		if err := t.kegStore.UpdateKeg(ctx, kegID, fields); err != nil {
			return persistence("clearing keg assignment", err)
		}
	}

	tap.AssignedKegID = nil
	tap.IsLastKeg = false

	if keg != nil {
		keg.OnTap = false
		keg.TapNumber = nil
	}

	t.logger.Info("keg unassigned", zap.Int("tap", tapNumber), zap.String("keg_id", kegID))

	return nil
}

// KickAndUnassign is the kick flow for a tapped keg: unassign first, then
// decrement or remove. If the removal fails the keg stays, unassigned at its
// last container, and the kick can be retried.
func (t *Taproom) KickAndUnassign(ctx context.Context, kegID string, tapNumber int) (*model.Keg, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tapNumber < 1 || tapNumber > t.tapCount {
		return nil, false, countErr("kick_and_unassign", fmt.Errorf("%w: tap number %d out of range 1..%d", ErrInvalidArgument, tapNumber, t.tapCount))
	}

	if _, ok := t.kegs[kegID]; !ok {
		return nil, false, countErr("kick_and_unassign", fmt.Errorf("%w: keg %s", ErrNotFound, kegID))
	}

	tap := t.taps[tapNumber]
	if tap.AssignedKegID == nil || *tap.AssignedKegID != kegID {
		return nil, false, countErr("kick_and_unassign", fmt.Errorf("%w: keg %s is not on tap %d", ErrInvalidState, kegID, tapNumber))
	}

	if err := t.unassign(ctx, tapNumber); err != nil {
		return nil, false, countErr("kick_and_unassign", err)
	}

	keg, removed, err := t.decrementOrRemove(ctx, kegID)

	return keg, removed, countErr("kick_and_unassign", err)
}

// RecomputeLastKeg derives the tap's last-keg flag from its assigned keg's
// quantity, persisting the flag if it changed, and returns the result.
func (t *Taproom) RecomputeLastKeg(ctx context.Context, tapNumber int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tapNumber < 1 || tapNumber > t.tapCount {
		return false, countErr("recompute_last_keg", fmt.Errorf("%w: tap number %d out of range 1..%d", ErrInvalidArgument, tapNumber, t.tapCount))
	}

	tap := t.taps[tapNumber]
	last := false

	if tap.AssignedKegID != nil {
		if keg, ok := t.kegs[*tap.AssignedKegID]; ok {
			last = keg.Quantity <= 1
		}
	}

	if tap.IsLastKeg != last {
		if err := t.tapStore.UpsertTap(ctx, tapNumber, map[string]any{model.FieldIsLastKeg: last}); err != nil {
			return false, countErr("recompute_last_keg", persistence("updating last-keg flag", err))
		}

		tap.IsLastKeg = last
	}

	countOp("recompute_last_keg", nil)

	return last, nil
}
