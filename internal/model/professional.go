package model

// Professional is the resource being scheduled. AllowOverbooking lets the
// professional opt out of availability and overlap enforcement; location
// capacity still applies.
type Professional struct {
	Base
	Name             string `db:"name" json:"name"`
	Email            string `db:"email" json:"email"`
	PasswordHash     string `db:"password_hash" json:"-"`
	AllowOverbooking bool   `db:"allow_overbooking" json:"allow_overbooking"`
	SlotIntervalMins int    `db:"slot_interval_mins" json:"slot_interval_mins"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	Professional Professional `json:"professional"`
}
