package model

// Location is a physical room or unit. Capacity limits how many
// non-cancelled bookings may overlap there at once; zero means unlimited.
type Location struct {
	Base
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

type CreateLocationRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Capacity int    `json:"capacity" validate:"min=0"`
}
