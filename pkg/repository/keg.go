package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

func (r *Repository) ListKegs(ctx context.Context) ([]model.Keg, error) {
	var records []KegRecord

	if result := r.DB.WithContext(ctx).Order("id").Find(&records); result.Error != nil {
		r.Logger.Error("error listing kegs", zap.Error(result.Error))

		return nil, result.Error
	}

	kegs := make([]model.Keg, 0, len(records))
	for _, record := range records {
		kegs = append(kegs, record.toModel())
	}

	return kegs, nil
}

func (r *Repository) CreateKeg(ctx context.Context, keg model.Keg) (string, error) {
	record := KegRecord{
		DocID:     uuid.NewString(),
		BeerName:  keg.BeerName,
		Size:      string(keg.Size),
		Quantity:  keg.Quantity,
		OnTap:     keg.OnTap,
		TapNumber: keg.TapNumber,
	}

	if result := r.DB.WithContext(ctx).Create(&record); result.Error != nil {
		return "", result.Error
	}

	return record.DocID, nil
}

func (r *Repository) UpdateKeg(ctx context.Context, id string, fields map[string]any) error {
	result := r.DB.WithContext(ctx).Model(&KegRecord{}).Where("doc_id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("keg %s: no such record", id)
	}

	return nil
}

func (r *Repository) DeleteKeg(ctx context.Context, id string) error {
	result := r.DB.WithContext(ctx).Where("doc_id = ?", id).Delete(&KegRecord{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("keg %s: no such record", id)
	}

	return nil
}
