package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

func (r *Repository) ListTaps(ctx context.Context) ([]model.Tap, error) {
	var records []TapRecord

	if result := r.DB.WithContext(ctx).Order("number").Find(&records); result.Error != nil {
		return nil, result.Error
	}

	taps := make([]model.Tap, 0, len(records))
	for _, record := range records {
		taps = append(taps, record.toModel())
	}

	return taps, nil
}

// UpsertTap inserts the tap row if missing and applies only the given
// fields to an existing row; an empty field map just ensures the row exists.
func (r *Repository) UpsertTap(ctx context.Context, number int, fields map[string]any) error {
	record := TapRecord{Number: number}

	for key, value := range fields {
		switch key {
		case model.FieldAssignedKegID:
			record.AssignedKegID = toStringPtr(value)
		case model.FieldIsLastKeg:
			flag, _ := value.(bool)
			record.IsLastKeg = flag
		}
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoNothing: true,
	}

	if len(fields) > 0 {
		onConflict.DoNothing = false
		onConflict.DoUpdates = clause.Assignments(fields)
	}

	result := r.DB.WithContext(ctx).Clauses(onConflict).Create(&record)

	return result.Error
}

func toStringPtr(value any) *string {
	switch v := value.(type) {
	case string:
		return &v
	case *string:
		return v
	default:
		return nil
	}
}
