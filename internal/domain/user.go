package domain

type User struct {
	ID           int64   `json:"user_id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	FirstName    *string `json:"f_name"`
	LastName     *string `json:"l_name"`
	MobileNo     *string `json:"mobile_no"`
}

// Identity is what an authenticated request carries.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
