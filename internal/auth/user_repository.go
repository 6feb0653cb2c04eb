package auth

import "errors"

// UserRepository описывает хранилище учётных записей. Реализации:
// in-memory (по умолчанию) и MariaDB.
type UserRepository interface {
	// GetUserByUsername возвращает пользователя по имени (без учёта
	// регистра). Если пользователь не найден — (nil, ErrUserNotFound).
	GetUserByUsername(username string) (*User, error)

	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(id uint64) (*User, error)

	// CreateUser сохраняет нового пользователя. Пароль передаётся уже
	// захешированным. При конфликте имени — ErrUserExists.
	CreateUser(username string, passwordHash string, isAdmin bool) (*User, error)

	// ValidateCredentials проверяет пару имя/пароль и возвращает
	// пользователя при совпадении; иначе ErrInvalidCredentials.
	ValidateCredentials(username, password string) (*User, error)
}

// Доменные ошибки хранилища.
var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrUserExists         = errors.New("пользователь уже существует")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
)
