package models

// Actor - аутентифицированный пользователь текущего запроса.
// Заполняется один раз в middleware и явно передается в сервисы.
type Actor struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin сообщает, видит ли пользователь записи всех пользователей
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasRole проверяет роль пользователя
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
