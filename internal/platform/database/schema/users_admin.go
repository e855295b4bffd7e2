package schema

// UserAdminTable represents the 'users.admin' allow-list table
type UserAdminTable struct {
	Table     string
	UserID    string
	CreatedAt string
}

// UserAdmin is the schema definition for users.admin
var UserAdmin = UserAdminTable{
	Table:     "users.admin",
	UserID:    "userid",
	CreatedAt: "createdat",
}
