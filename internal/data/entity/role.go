package entity

// RoleID mirrors the seeded rows of the roles table.
type RoleID int16

const (
	RoleUser  RoleID = 1
	RoleAdmin RoleID = 2
)

func (r RoleID) IsAdmin() bool { return r == RoleAdmin }

func (r RoleID) Valid() bool { return r == RoleUser || r == RoleAdmin }

func (r RoleID) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

type Role struct {
	ID          RoleID `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}
