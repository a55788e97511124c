package core

// User is an account that places orders. Authentication lives elsewhere;
// the core only needs identity and the archived flag.
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Archived bool   `json:"archived"`
	Timestamps
}

func (u User) EntityID() int64  { return u.ID }
func (u User) IsArchived() bool { return u.Archived }

// Employee is warehouse staff that can be assigned to orders.
// WarehouseID is optional: head-office staff have none.
type Employee struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	Archived    bool   `json:"archived"`
	Timestamps
}

func (e Employee) EntityID() int64  { return e.ID }
func (e Employee) IsArchived() bool { return e.Archived }

// FullName joins first and last name.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// UserSummary is the read model for users.
type UserSummary struct {
	User
	OrderCount int `json:"order_count"`
}

// EmployeeSummary is the read model for employees.
type EmployeeSummary struct {
	Employee
	FullName         string `json:"full_name"`
	WarehouseAddress string `json:"warehouse_address,omitempty"`
}
