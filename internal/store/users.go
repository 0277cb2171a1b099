package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

var ErrOpenIDRequired = errors.New("user openId is required for upsert")

// userUpsertPlan is the resolved column set for one upsert. Keeping it a
// plain value makes the merge rules testable without a database.
type userUpsertPlan struct {
	insertColumns []string
	insertValues  []interface{}
	updateColumns []string
}

// planUserUpsert applies the supplied-field-only merge rules:
//   - a field carried as JSON null clears the column, an omitted field
//     leaves it unchanged
//   - an omitted role is forced to admin when the openId matches the
//     configured owner identity
//   - lastSignedIn defaults to now, and a no-field update still advances it
//     so the column always moves on each login
func planUserUpsert(user model.UserUpsert, ownerOpenID string, now time.Time) (userUpsertPlan, error) {
	if user.OpenID == "" {
		return userUpsertPlan{}, ErrOpenIDRequired
	}

	plan := userUpsertPlan{
		insertColumns: []string{"open_id"},
		insertValues:  []interface{}{user.OpenID},
	}

	textFields := []struct {
		column string
		value  model.NullableString
	}{
		{"name", user.Name},
		{"email", user.Email},
		{"login_method", user.LoginMethod},
	}
	for _, field := range textFields {
		if !field.value.Set {
			continue
		}
		plan.insertColumns = append(plan.insertColumns, field.column)
		plan.insertValues = append(plan.insertValues, field.value.Value)
		plan.updateColumns = append(plan.updateColumns, field.column)
	}

	if user.LastSignedIn != nil {
		plan.updateColumns = append(plan.updateColumns, "last_signed_in")
	}
	if user.Role != nil {
		plan.insertColumns = append(plan.insertColumns, "role")
		plan.insertValues = append(plan.insertValues, *user.Role)
		plan.updateColumns = append(plan.updateColumns, "role")
	} else if ownerOpenID != "" && user.OpenID == ownerOpenID {
		plan.insertColumns = append(plan.insertColumns, "role")
		plan.insertValues = append(plan.insertValues, model.RoleAdmin)
		plan.updateColumns = append(plan.updateColumns, "role")
	}

	signedIn := now
	if user.LastSignedIn != nil {
		signedIn = *user.LastSignedIn
	}
	plan.insertColumns = append(plan.insertColumns, "last_signed_in")
	plan.insertValues = append(plan.insertValues, signedIn)

	if len(plan.updateColumns) == 0 {
		plan.updateColumns = append(plan.updateColumns, "last_signed_in")
	}

	return plan, nil
}

func (p userUpsertPlan) sql() string {
	placeholders := make([]string, len(p.insertColumns))
	for i := range p.insertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sets := make([]string, 0, len(p.updateColumns)+1)
	for _, column := range p.updateColumns {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	sets = append(sets, "updated_at = now()")
	return fmt.Sprintf(
		"INSERT INTO users (%s) VALUES (%s) ON CONFLICT (open_id) DO UPDATE SET %s",
		strings.Join(p.insertColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(sets, ", "),
	)
}

// UpsertUser creates or refreshes the row keyed by openId. The store being
// unavailable is tolerated: login must keep working without a database.
func (s *Store) UpsertUser(ctx context.Context, user model.UserUpsert) error {
	plan, err := planUserUpsert(user, s.ownerOpenID, time.Now().UTC())
	if err != nil {
		return err
	}
	pool := s.db(ctx)
	if pool == nil {
		s.logger.Warn("cannot upsert user: store unavailable")
		return nil
	}
	if _, err := pool.Exec(ctx, plan.sql(), plan.insertValues...); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByOpenID(ctx context.Context, openID string) (*model.User, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, nil
	}
	var user model.User
	row := pool.QueryRow(ctx, `
		SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		FROM users
		WHERE open_id = $1
	`, openID)
	err := row.Scan(
		&user.ID,
		&user.OpenID,
		&user.Name,
		&user.Email,
		&user.LoginMethod,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSignedIn,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by openId: %w", err)
	}
	return &user, nil
}
