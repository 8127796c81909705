package repository

import (
	"gorm.io/gorm"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

// KegRecord is the "kegs" collection row. DocID is the engine-visible
// identity, assigned on create; the numeric primary key stays internal.
type KegRecord struct {
	gorm.Model
	DocID     string `gorm:"uniqueIndex"`
	BeerName  string
	Size      string
	Quantity  int
	OnTap     bool
	TapNumber *int
}

// TapRecord is the "taps" collection row, keyed by tap number.
type TapRecord struct {
	gorm.Model
	Number        int `gorm:"uniqueIndex"`
	AssignedKegID *string
	IsLastKeg     bool
}

func (r KegRecord) toModel() model.Keg {
	return model.Keg{
		ID:        r.DocID,
		BeerName:  r.BeerName,
		Size:      model.KegSize(r.Size),
		Quantity:  r.Quantity,
		OnTap:     r.OnTap,
		TapNumber: r.TapNumber,
	}
}

func (r TapRecord) toModel() model.Tap {
	return model.Tap{
		Number:        r.Number,
		AssignedKegID: r.AssignedKegID,
		IsLastKeg:     r.IsLastKeg,
	}
}
