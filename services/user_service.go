package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims - содержимое токена
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type UserDTO struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin user lic clothAura"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user lic clothAura"`
}

// UserService отвечает за вход и учетные записи
type UserService struct {
	db        *database.Database
	secretKey []byte
	expiresIn time.Duration
}

// NewUserService создает новый экземпляр UserService
func NewUserService(db *database.Database, secretKey string, expiresInHours int) *UserService {
	if expiresInHours <= 0 {
		expiresInHours = 24
	}
	return &UserService{
		db:        db,
		secretKey: []byte(secretKey),
		expiresIn: time.Duration(expiresInHours) * time.Hour,
	}
}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Login проверяет учетные данные и выдает токен с user_id и role
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	// Ищем пользователя по имени (без учета регистра и пробелов)
	var user models.User
	if err := s.db.DB.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(req.Username)).
		First(&user).Error; err != nil {
		if errors.Is(notFoundOr(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Проверяем пароль
	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	utils.LogInfo("User %s logged in", user.Username)
	return &LoginResponse{Token: token, User: toUserDTO(&user)}, nil
}

// generateToken создает JWT токен
func (s *UserService) generateToken(user *models.User) (string, error) {
	jti, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ParseToken проверяет подпись и срок токена и возвращает пользователя запроса
func (s *UserService) ParseToken(tokenString string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	if claims.UserID == 0 || !models.ValidRole(claims.Role) {
		return models.Actor{}, errors.New("invalid token claims")
	}
	return models.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// Me возвращает профиль текущего пользователя
func (s *UserService) Me(ctx context.Context, actor models.Actor) (*UserDTO, error) {
	user, err := s.findById(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// List возвращает всех пользователей
func (s *UserService) List(ctx context.Context) ([]UserDTO, error) {
	var users []models.User
	if err := s.db.DB.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return out, nil
}

// Create создает пользователя с хешированным паролем
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	// Хешируем пароль
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Name:     req.Name,
		Password: hash,
		Role:     req.Role,
	}
	if err := s.db.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(notFoundOr(err), ErrDuplicate) {
			return nil, fieldError("username", "username already exists")
		}
		return nil, err
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// Update меняет имя, роль и, если передан, пароль
func (s *UserService) Update(ctx context.Context, id uint, req UpdateUserRequest) (*UserDTO, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"name": req.Name}
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if err := s.db.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	user.Name = req.Name
	if req.Role != "" {
		user.Role = req.Role
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// Delete удаляет пользователя; удалить самого себя нельзя
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if actor.UserID == id {
		return fieldError("id", "cannot delete the current user")
	}
	res := s.db.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// findById ищет пользователя по ID
func (s *UserService) findById(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}
