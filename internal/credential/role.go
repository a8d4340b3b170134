package credential

// Role identifies which shared PIN a caller presented.
type Role int

const (
	// RoleAuthor writes entries and may rotate the author PIN.
	RoleAuthor Role = iota + 1
	// RoleViewer reads entries and nothing else.
	RoleViewer
)

// String returns the role name for logs.
func (r Role) String() string {
	switch r {
	case RoleAuthor:
		return "author"
	case RoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}
