package model

type KegSize string

const (
	SizeHalfBarrel    KegSize = "Half Barrel"
	SizeQuarterBarrel KegSize = "Quarter Barrel"
	SizeSixthBarrel   KegSize = "Sixth Barrel"
	SizeMiniKeg       KegSize = "Mini Keg"
)

func KegSizes() []KegSize {
	return []KegSize{SizeHalfBarrel, SizeQuarterBarrel, SizeSixthBarrel, SizeMiniKeg}
}

func (s KegSize) Valid() bool {
	switch s {
	case SizeHalfBarrel, SizeQuarterBarrel, SizeSixthBarrel, SizeMiniKeg:
		return true
	}

	return false
}

// Keg is one stock line: a beer in a given container size. Quantity counts
// physical containers in stock; kicking removes one container and the line
// itself once the last container is gone.
type Keg struct {
	ID        string
	BeerName  string
	Size      KegSize
	Quantity  int
	OnTap     bool
	TapNumber *int
}

// Store field keys shared by every KegStore/TapStore implementation. Partial
// updates are expressed as maps keyed by these names so the engines stay
// backend agnostic.
const (
	FieldBeerName      = "beer_name"
	FieldSize          = "size"
	FieldQuantity      = "quantity"
	FieldOnTap         = "on_tap"
	FieldTapNumber     = "tap_number"
	FieldAssignedKegID = "assigned_keg_id"
	FieldIsLastKeg     = "is_last_keg"
)
