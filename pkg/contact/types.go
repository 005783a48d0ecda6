package contact

// MaxFieldLength is the column width of every user-supplied field.
const MaxFieldLength = 100

// Form field names, shared by the HTML forms, the validation errors and the
// storage columns.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldPhoneNumber = "phone_number"
	FieldEmail       = "email"
)

// Contact is a persisted phonebook entry.
type Contact struct {
	ID          int64  `json:"id"`           // Assigned by storage, contiguous 1..N
	FirstName   string `json:"first_name"`   // Letters only
	LastName    string `json:"last_name"`    // Letters only
	PhoneNumber string `json:"phone_number"` // Digits only
	Email       string `json:"email"`        // Unique across all contacts
}

// Input holds the four mutable fields of a contact after validation.
// It carries no id: ids are assigned by storage and never change on update.
type Input struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// WithID returns the Contact that results from persisting in under id.
func (in Input) WithID(id int64) Contact {
	return Contact{
		ID:          id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
	}
}

// Input returns the mutable fields of c.
func (c Contact) Input() Input {
	return Input{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
	}
}

// FullName joins first and last name for display.
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}
