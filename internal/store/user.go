package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/schoolroster/roster/types"
)

const userColumns = `u.id, u.email, u.username, u.password_hash, u.role, u.token, u.class_id, u.created_at, u.updated_at`

const userJoinedSelect = `
	SELECT ` + userColumns + `,
	       p.id, p.first_name, p.last_name, p.address, p.phone,
	       c.id, c.assigned_date, c.model
	FROM users u
	LEFT JOIN personal_info p ON p.user_id = u.id
	LEFT JOIN computers c ON c.user_id = u.id`

// UserRepository handles persistence for users and their one-to-one records.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every user ordered by id. withRelations joins personal info and computer.
func (r *UserRepository) List(ctx context.Context, withRelations bool) ([]types.User, error) {
	if !withRelations {
		users := []types.User{}
		const query = `SELECT ` + userColumns + ` FROM users u ORDER BY u.id`
		if err := r.db.SelectContext(ctx, &users, query); err != nil {
			return nil, err
		}
		return users, nil
	}
	return queryJoinedUsers(ctx, r.db, userJoinedSelect+` ORDER BY u.id`)
}

func (r *UserRepository) GetByID(ctx context.Context, id int, withRelations bool) (types.User, error) {
	if !withRelations {
		const query = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
		return r.getOne(ctx, query, id)
	}
	users, err := queryJoinedUsers(ctx, r.db, userJoinedSelect+` WHERE u.id = $1`, id)
	if err != nil {
		return types.User{}, err
	}
	if len(users) == 0 {
		return types.User{}, ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.token = $1`
	return r.getOne(ctx, query, token)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (types.User, error) {
	var user types.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Create inserts the user with its personal info and computer in one transaction.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	personal := types.PersonalInfo{}
	if user.PersonalInfo != nil {
		personal = *user.PersonalInfo
	}
	computer := types.Computer{AssignedDate: now}
	if user.Computer != nil {
		computer = *user.Computer
	}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertUser = `
			INSERT INTO users (email, username, password_hash, role, token, class_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`
		if err := tx.QueryRowContext(
			ctx,
			insertUser,
			user.Email,
			user.Username,
			user.PasswordHash,
			user.Role,
			user.Token,
			user.ClassID,
			user.CreatedAt,
			user.UpdatedAt,
		).Scan(&user.ID); err != nil {
			return err
		}

		personal.UserID = user.ID
		const insertPersonal = `
			INSERT INTO personal_info (user_id, first_name, last_name, address, phone)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`
		if err := tx.QueryRowContext(
			ctx,
			insertPersonal,
			personal.UserID,
			personal.FirstName,
			personal.LastName,
			personal.Address,
			personal.Phone,
		).Scan(&personal.ID); err != nil {
			return err
		}

		computer.UserID = user.ID
		const insertComputer = `
			INSERT INTO computers (user_id, assigned_date, model)
			VALUES ($1, $2, $3)
			RETURNING id`
		return tx.QueryRowContext(
			ctx,
			insertComputer,
			computer.UserID,
			computer.AssignedDate,
			computer.Model,
		).Scan(&computer.ID)
	})
	if err != nil {
		return types.User{}, err
	}

	user.PersonalInfo = &personal
	user.Computer = &computer
	return user, nil
}

// SetToken stores a freshly issued session token for the user.
func (r *UserRepository) SetToken(ctx context.Context, id int, token string) error {
	const query = `UPDATE users SET token = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, token, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Update applies patch to the user and its nested records. Nil patch fields
// leave the stored columns untouched.
func (r *UserRepository) Update(ctx context.Context, id int, patch types.UserPatch) error {
	var users assignments
	if patch.Email != nil {
		users.set("email", *patch.Email)
	}
	if patch.Username != nil {
		users.set("username", *patch.Username)
	}
	if patch.PasswordHash != nil {
		users.set("password_hash", *patch.PasswordHash)
	}
	if patch.Role != nil {
		users.set("role", *patch.Role)
	}
	if patch.ClassIDSet {
		users.set("class_id", patch.ClassID)
	}
	users.set("updated_at", time.Now().UTC())

	var personal assignments
	if patch.FirstName != nil {
		personal.set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		personal.set("last_name", *patch.LastName)
	}
	if patch.Address != nil {
		personal.set("address", *patch.Address)
	}
	if patch.Phone != nil {
		personal.set("phone", *patch.Phone)
	}

	var computer assignments
	if patch.AssignedDate != nil {
		computer.set("assigned_date", *patch.AssignedDate)
	}
	if patch.Model != nil {
		computer.set("model", *patch.Model)
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args := users.update("users", "id", id)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if !personal.empty() {
			query, args := personal.update("personal_info", "user_id", id)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		if !computer.empty() {
			query, args := computer.update("computers", "user_id", id)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveFromClass clears the user's class and reports the class it left.
func (r *UserRepository) RemoveFromClass(ctx context.Context, id int) (*int, error) {
	var previous *int
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const selectQuery = `SELECT class_id FROM users WHERE id = $1`
		if err := tx.QueryRowContext(ctx, selectQuery, id).Scan(&previous); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		const updateQuery = `UPDATE users SET class_id = NULL, updated_at = $1 WHERE id = $2`
		_, err := tx.ExecContext(ctx, updateQuery, time.Now().UTC(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func queryJoinedUsers(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]types.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		user, err := scanJoinedUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanJoinedUser(rows *sql.Rows) (types.User, error) {
	var (
		user                types.User
		personalID          sql.NullInt64
		firstName, lastName sql.NullString
		address, phone      sql.NullString
		computerID          sql.NullInt64
		assignedDate        sql.NullTime
		model               sql.NullString
	)
	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Token,
		&user.ClassID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&personalID,
		&firstName,
		&lastName,
		&address,
		&phone,
		&computerID,
		&assignedDate,
		&model,
	); err != nil {
		return types.User{}, err
	}

	if personalID.Valid {
		user.PersonalInfo = &types.PersonalInfo{
			ID:        int(personalID.Int64),
			UserID:    user.ID,
			FirstName: firstName.String,
			LastName:  lastName.String,
			Address:   address.String,
			Phone:     phone.String,
		}
	}
	if computerID.Valid {
		user.Computer = &types.Computer{
			ID:           int(computerID.Int64),
			UserID:       user.ID,
			AssignedDate: assignedDate.Time,
			Model:        model.String,
		}
	}
	return user, nil
}
