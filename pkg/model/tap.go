package model

// Tap is a numbered dispensing slot. AssignedKegID is a non-owning reference
// that must be re-resolved against the live keg collection on load.
type Tap struct {
	Number        int
	AssignedKegID *string
	IsLastKeg     bool
}
