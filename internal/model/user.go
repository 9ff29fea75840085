// Package model holds the concrete entities stored through the mapper.
package model

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"recordmap/internal/mapper"
	"recordmap/internal/schema"
	"recordmap/internal/storage"
)

// User is a person record. Unset text columns read back as empty strings.
type User struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name" validate:"max=255"`
	LastName  string `db:"last_name" json:"last_name" validate:"max=255"`
	Email     string `db:"email" json:"email" validate:"omitempty,email"`
	Gender    string `db:"gender" json:"gender" validate:"max=64"`
	IPAddress string `db:"ip_address" json:"ip_address" validate:"omitempty,ip"`
}

// UserSchema describes the user table: an autoincrement integer key and five
// text columns.
func UserSchema() (schema.Descriptor, error) {
	return schema.For(User{},
		schema.Column{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
		schema.Column{Name: "first_name", Type: "text"},
		schema.Column{Name: "last_name", Type: "text"},
		schema.Column{Name: "email", Type: "text"},
		schema.Column{Name: "gender", Type: "text"},
		schema.Column{Name: "ip_address", Type: "text"},
	)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats.
func (u User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("model: invalid user: %w", err)
	}
	return nil
}

// attrs returns the writable columns of u.
func (u User) attrs() map[string]any {
	return map[string]any{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"gender":     u.Gender,
		"ip_address": u.IPAddress,
	}
}

// UserStore is a typed facade over a mapper for User.
type UserStore struct {
	m *mapper.Mapper
}

// NewUserStore builds a store for dialect.
func NewUserStore(dialect storage.Dialect, opts ...mapper.Option) (*UserStore, error) {
	desc, err := UserSchema()
	if err != nil {
		return nil, err
	}
	m, err := mapper.New(desc, dialect, opts...)
	if err != nil {
		return nil, err
	}
	return &UserStore{m: m}, nil
}

// Mapper returns the underlying mapper.
func (s *UserStore) Mapper() *mapper.Mapper { return s.m }

// CreateTable creates the user table if needed.
func (s *UserStore) CreateTable(ctx context.Context, q sqlx.ExecerContext) error {
	return s.m.CreateTable(ctx, q)
}

// Add validates and inserts u, setting u.ID to the generated key.
func (s *UserStore) Add(ctx context.Context, q sqlx.ExtContext, u *User) (int64, error) {
	if err := u.Validate(); err != nil {
		return 0, err
	}
	rec, err := s.m.NewRecord(u.attrs())
	if err != nil {
		return 0, err
	}
	pk, err := s.m.Save(ctx, q, rec)
	if err != nil {
		return 0, err
	}
	id, ok := pk.(int64)
	if !ok {
		return 0, fmt.Errorf("model: unexpected user key type %T", pk)
	}
	u.ID = id
	return id, nil
}

// Get loads the user with id. NULL columns read as empty strings.
func (s *UserStore) Get(ctx context.Context, q sqlx.ExtContext, id int64) (User, error) {
	rec, err := s.m.GetByPrimaryKey(ctx, q, id)
	if err != nil {
		return User{}, fmt.Errorf("model: get user %d: %w", id, err)
	}
	return userFromValues(id, rec), nil
}

// Update applies changes (column name to value) to the user with id and
// returns the stored result. Unknown columns and invalid values are rejected
// before anything is written. Columns not named in changes are written back
// as read, so NULLs stay NULL.
func (s *UserStore) Update(ctx context.Context, q sqlx.ExtContext, id int64, changes map[string]any) (User, error) {
	rec, err := s.m.GetByPrimaryKey(ctx, q, id)
	if err != nil {
		return User{}, fmt.Errorf("model: update user %d: %w", id, err)
	}
	for k, v := range changes {
		if k == s.m.PrimaryKeyName() {
			return User{}, fmt.Errorf("model: cannot change %s", k)
		}
		if err := rec.Set(k, v); err != nil {
			return User{}, err
		}
	}

	next := userFromValues(id, rec)
	if err := next.Validate(); err != nil {
		return User{}, err
	}
	if _, err := s.m.Save(ctx, q, rec); err != nil {
		return User{}, err
	}
	return next, nil
}

// Delete removes the user with id.
func (s *UserStore) Delete(ctx context.Context, q sqlx.ExtContext, id int64) error {
	rec, err := s.m.GetByPrimaryKey(ctx, q, id)
	if err != nil {
		return err
	}
	return s.m.Delete(ctx, q, rec)
}

func userFromValues(id int64, rec *mapper.Record) User {
	str := func(k string) string {
		v, _ := rec.Get(k)
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	return User{
		ID:        id,
		FirstName: str("first_name"),
		LastName:  str("last_name"),
		Email:     str("email"),
		Gender:    str("gender"),
		IPAddress: str("ip_address"),
	}
}
