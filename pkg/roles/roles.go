package roles

type Role string

const (
	User     Role = "user"
	Admin    Role = "admin"
	Disabled Role = "disabled"
)

func (r Role) Valid() bool {
	switch r {
	case User, Admin, Disabled:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
