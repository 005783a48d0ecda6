package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/dyluth/contactbook/pkg/contact"
)

var columns = []string{"id", "first_name", "last_name", "phone_number", "email"}

func inputColumnMap(in contact.Input) map[string]any {
	return map[string]any{
		contact.FieldFirstName:   in.FirstName,
		contact.FieldLastName:    in.LastName,
		contact.FieldPhoneNumber: in.PhoneNumber,
		contact.FieldEmail:       in.Email,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (contact.Contact, error) {
	var c contact.Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Email)
	return c, err
}

// Insert persists a new contact and returns it with its assigned id.
// Returns *UniqueConstraintError if the email is already taken.
func (s *Store) Insert(ctx context.Context, in contact.Input) (contact.Contact, error) {
	query, args, err := s.qb.Insert(tableName).
		SetMap(inputColumnMap(in)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return contact.Contact{}, fmt.Errorf("fail to build query: %w", err)
	}

	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isEmailUniqueViolation(err) {
			return contact.Contact{}, &UniqueConstraintError{Field: contact.FieldEmail, Value: in.Email}
		}
		return contact.Contact{}, fmt.Errorf("fail to insert contact: %w", err)
	}

	return in.WithID(id), nil
}

// Get returns the contact with the given id, or *NotFoundError.
func (s *Store) Get(ctx context.Context, id int64) (contact.Contact, error) {
	query, args, err := s.qb.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return contact.Contact{}, fmt.Errorf("fail to build query: %w", err)
	}

	c, err := scanContact(s.conn(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contact.Contact{}, &NotFoundError{ID: id}
		}
		return contact.Contact{}, fmt.Errorf("fail to query contact %d: %w", id, err)
	}

	return c, nil
}

// List returns every contact ordered by id. Renumbering preserves relative
// order, so this is also insertion order.
func (s *Store) List(ctx context.Context) ([]contact.Contact, error) {
	query, args, err := s.qb.Select(columns...).
		From(tableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("fail to build query: %w", err)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fail to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []contact.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("fail to scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return contacts, nil
}

// Count returns the number of contacts, which is also the highest id.
func (s *Store) Count(ctx context.Context) (int64, error) {
	query, args, err := s.qb.Select("COUNT(*)").From(tableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("fail to build query: %w", err)
	}

	var n int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("fail to count contacts: %w", err)
	}
	return n, nil
}

// Update overwrites the four mutable fields of contact id.
// A missing id is a silent no-op; callers check existence first (or use
// UpdateExisting). Returns *UniqueConstraintError if the new email is taken.
func (s *Store) Update(ctx context.Context, id int64, in contact.Input) error {
	query, args, err := s.qb.Update(tableName).
		SetMap(inputColumnMap(in)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("fail to build query: %w", err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isEmailUniqueViolation(err) {
			return &UniqueConstraintError{Field: contact.FieldEmail, Value: in.Email}
		}
		return fmt.Errorf("fail to update contact %d: %w", id, err)
	}

	return nil
}

// UpdateExisting checks that contact id exists and overwrites it, in one
// transaction. Returns the updated contact, *NotFoundError or
// *UniqueConstraintError.
func (s *Store) UpdateExisting(ctx context.Context, id int64, in contact.Input) (contact.Contact, error) {
	err := s.TxFn(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return s.Update(ctx, id, in)
	})
	if err != nil {
		return contact.Contact{}, err
	}
	return in.WithID(id), nil
}

// Delete removes contact id and reports whether a row was removed.
// A missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := s.qb.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("fail to build query: %w", err)
	}

	res, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("fail to delete contact %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fail to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ShiftIDsAbove adds delta to the id of every contact whose id is greater than
// threshold and returns how many rows moved.
//
// The shift is done in two statements inside one transaction: matching ids are
// first negated (negative ids never collide with live ones), then mapped to
// their final value. This keeps every intermediate row state unique regardless
// of the order in which the engine visits rows. The caller must make sure the
// target range is free; after deleting id threshold, delta=-1 always is.
func (s *Store) ShiftIDsAbove(ctx context.Context, threshold, delta int64) (int64, error) {
	var moved int64

	err := s.TxFn(ctx, func(ctx context.Context) error {
		park, parkArgs, err := s.qb.Update(tableName).
			Set("id", squirrel.Expr("-id")).
			Where(squirrel.Gt{"id": threshold}).
			ToSql()
		if err != nil {
			return fmt.Errorf("fail to build query: %w", err)
		}

		res, err := s.conn(ctx).ExecContext(ctx, park, parkArgs...)
		if err != nil {
			return fmt.Errorf("fail to park ids above %d: %w", threshold, err)
		}
		if moved, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("fail to read affected rows: %w", err)
		}
		if moved == 0 {
			return nil
		}

		// -id restores the original id; adding delta gives the final one.
		settle, settleArgs, err := s.qb.Update(tableName).
			Set("id", squirrel.Expr("? - id", delta)).
			Where(squirrel.Lt{"id": 0}).
			ToSql()
		if err != nil {
			return fmt.Errorf("fail to build query: %w", err)
		}

		if _, err := s.conn(ctx).ExecContext(ctx, settle, settleArgs...); err != nil {
			return fmt.Errorf("fail to shift ids above %d by %d: %w", threshold, delta, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return moved, nil
}

// DeleteAndRenumber removes contact id and shifts every higher id down by one,
// all in a single transaction. Afterwards ids are again exactly 1..N-1.
// Returns the deleted contact, or *NotFoundError with the table unchanged.
func (s *Store) DeleteAndRenumber(ctx context.Context, id int64) (contact.Contact, error) {
	var deleted contact.Contact

	err := s.TxFn(ctx, func(ctx context.Context) error {
		if s.dialect.lockTable != "" {
			if _, err := s.conn(ctx).ExecContext(ctx, s.dialect.lockTable); err != nil {
				return fmt.Errorf("fail to lock %s: %w", tableName, err)
			}
		}

		c, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		removed, err := s.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return &NotFoundError{ID: id}
		}

		if _, err := s.ShiftIDsAbove(ctx, id, -1); err != nil {
			return err
		}

		if s.dialect.resetSequence != "" {
			if _, err := s.conn(ctx).ExecContext(ctx, s.dialect.resetSequence); err != nil {
				return fmt.Errorf("fail to reset id sequence: %w", err)
			}
		}

		deleted = c
		return nil
	})
	if err != nil {
		return contact.Contact{}, err
	}

	return deleted, nil
}
