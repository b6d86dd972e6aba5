package models

// Settings is the free-form facility block editable by admins. The
// capacity limits are echoed read-only for dashboard display; the
// authoritative constants live in the capacity package.
type Settings struct {
	FacilityName string `json:"facility_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	MaxRegular   int    `json:"max_regular"`
	MaxKeys      int    `json:"max_keys_overflow"`
}
