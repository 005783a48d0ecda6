// Package contact provides the Contact entity and the field-format rules that
// guard every write to the contact table.
//
// # Overview
//
// A Contact is a single phonebook entry. Its id is owned by storage: it is
// assigned on insert and kept contiguous (1..N) by the renumbering step that
// runs whenever a contact is deleted. The four remaining fields are supplied by
// the user and must pass Validate before they reach storage.
//
// # Validation Rules
//
//	first_name, last_name  letters only         ^[a-zA-Z]+$
//	phone_number           digits only          ^[0-9]+$
//	email                  local@domain.tld     ^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$
//
// Every field is required and limited to MaxFieldLength characters.
// Email uniqueness is not a format rule; storage enforces it.
//
// # Usage Example
//
//	input, err := contact.Validate("Ada", "Lovelace", "5550100", "ada@example.com")
//	if err != nil {
//		var verr *contact.ValidationError
//		if errors.As(err, &verr) {
//			log.Printf("bad %s: %s", verr.Field, verr.Message)
//		}
//		return err
//	}
//	created, err := store.Insert(ctx, input)
package contact
