package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"discovery-api/apperrors"
	"discovery-api/models"
)

// CreateUserInput is the payload of the admin-facing creation form.
type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Password    string
	AvatarColor string
}

// UpdateUserInput overwrites every editable column.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
	Status    string
}

// UserService reads and writes the users table.
type UserService struct {
	db    *gorm.DB
	clock clock
}

// NewUserService instantiates the service.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, firstName, lastName, email, role, status, avatarColor, createdAt"

// List returns every user in natural table order.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Raw("SELECT " + userColumns + " FROM users").Scan(&users).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch users", "")
	}
	return users, nil
}

// Get loads one user, including the password hash.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to load user", "")
	}
	return &user, nil
}

// FindByEmail loads a user by email, including the password hash.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to load user", "")
	}
	return &user, nil
}

// Create hashes the password and inserts the row. A duplicate email is
// reported by the unique key, so no row is written twice.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("Missing required fields")
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, apperrors.Validation("Invalid role")
		}
		role = parsed
	}

	avatarColor := strings.TrimSpace(in.AvatarColor)
	if avatarColor == "" {
		avatarColor = models.DefaultAvatarColor
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to create user", err)
	}

	user := &models.User{
		ID:          newID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Role:        role,
		Password:    hashed,
		AvatarColor: avatarColor,
		Status:      models.UserActive,
		CreatedAt:   s.clock.now(),
	}

	err = s.db.WithContext(ctx).Exec(
		"INSERT INTO users (id, firstName, lastName, email, role, password, avatarColor) VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.FirstName, user.LastName, user.Email, string(user.Role), user.Password, user.AvatarColor,
	).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "Failed to create user", "Email already exists")
	}
	return user, nil
}

// Update overwrites the row. Unknown ids are reported as not found.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Role == "" || in.Status == "" {
		return apperrors.Validation("Missing required fields")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return apperrors.Validation("Invalid role")
	}
	status := models.UserStatus(in.Status)
	if !status.Valid() {
		return apperrors.Validation("Invalid status")
	}

	res := s.db.WithContext(ctx).Exec(
		"UPDATE users SET firstName = ?, lastName = ?, email = ?, role = ?, status = ? WHERE id = ?",
		in.FirstName, in.LastName, in.Email, string(role), string(status), id,
	)
	if res.Error != nil {
		return apperrors.FromDB(res.Error, "Failed to update user", "Email already exists")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// UpdatePassword stores a new bcrypt hash for the user.
func (s *UserService) UpdatePassword(ctx context.Context, id, password string) error {
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return apperrors.Internal("Failed to update password", err)
	}
	res := s.db.WithContext(ctx).Exec("UPDATE users SET password = ? WHERE id = ?", hashed, id)
	if res.Error != nil {
		return apperrors.FromDB(res.Error, "Failed to update password", "")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// Delete removes the row. Deleting an unknown id is a no-op.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM users WHERE id = ?", id).Error; err != nil {
		return apperrors.FromDB(err, "Failed to delete user", "")
	}
	return nil
}

// ActiveIDs lists the ids of active users, optionally restricted to roles.
func (s *UserService) ActiveIDs(ctx context.Context, roles ...models.Role) ([]string, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", string(models.UserActive))
	if len(roles) > 0 {
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		q = q.Where("role IN ?", names)
	}
	ids := make([]string, 0)
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch users", "")
	}
	return ids, nil
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, apperrors.FromDB(err, "Failed to count users", "")
	}
	return n, nil
}

