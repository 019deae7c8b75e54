package models

// Location is a resolved address with coordinates. A location without
// coordinates is considered unresolved and is rejected by validation before
// any distance lookup happens.
type Location struct {
	Address   string  `json:"address" bson:"address" validate:"required"`
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
	PlaceID   string  `json:"place_id,omitempty" bson:"place_id,omitempty"`
}

func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}
