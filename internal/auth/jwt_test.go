package auth

import (
	"strings"
	"testing"
	"time"
)

// TestGenerateJWT тестирует создание JWT токена
func TestGenerateJWT(t *testing.T) {
	user := &User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: "hashedpassword",
		IsAdmin:      false,
		CreatedAt:    time.Now(),
		LastLogin:    time.Now(),
	}

	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("Ошибка генерации JWT: %v", err)
	}

	if token == "" {
		t.Fatal("Пустой токен")
	}

	// Токен состоит из трёх частей, разделённых точками
	if strings.Count(token, ".") != 2 {
		t.Errorf("Неверный формат JWT токена: %s", token)
	}
}

// TestValidateJWT тестирует валидацию JWT токена
func TestValidateJWT(t *testing.T) {
	user := &User{
		ID:           42,
		Username:     "validuser",
		PasswordHash: "hashedpassword",
		IsAdmin:      true,
		CreatedAt:    time.Now(),
		LastLogin:    time.Now(),
	}

	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("Ошибка генерации JWT: %v", err)
	}

	playerID, isValid, isAdmin := ValidateJWT(token)

	if !isValid {
		t.Error("Валидный токен определен как недействительный")
	}
	if playerID != user.ID {
		t.Errorf("Неверный playerID: ожидался %d, получен %d", user.ID, playerID)
	}
	if isAdmin != user.IsAdmin {
		t.Errorf("Неверный флаг администратора: ожидался %v, получен %v", user.IsAdmin, isAdmin)
	}
}

// TestValidateInvalidJWT тестирует валидацию недействительного JWT
func TestValidateInvalidJWT(t *testing.T) {
	testCases := []string{
		"invalid.token.here",
		"",
		"not.a.jwt",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, invalidToken := range testCases {
		playerID, isValid, isAdmin := ValidateJWT(invalidToken)

		if isValid {
			t.Errorf("Недействительный токен '%s' прошел валидацию", invalidToken)
		}
		if playerID != 0 {
			t.Errorf("PlayerID должен быть 0 для недействительного токена, получен %d", playerID)
		}
		if isAdmin {
			t.Errorf("isAdmin должен быть false для недействительного токена")
		}
	}
}

// TestSetJWTSecret тестирует установку пользовательского секретного ключа
func TestSetJWTSecret(t *testing.T) {
	validSecret := GenerateSecureSecret()

	if err := SetJWTSecret(validSecret); err != nil {
		t.Errorf("Ошибка установки валидного секрета: %v", err)
	}

	invalidSecrets := []string{
		"too-short",
		"invalid-base64-@#$%",
		"",
	}

	for _, invalidSecret := range invalidSecrets {
		if err := SetJWTSecret(invalidSecret); err == nil {
			t.Errorf("Недействительный секрет '%s' был принят", invalidSecret)
		}
	}
}

// TestMemoryRepoCredentials тестирует проверку пары имя/пароль
func TestMemoryRepoCredentials(t *testing.T) {
	repo, err := NewMemoryUserRepo()
	if err != nil {
		t.Fatalf("Ошибка создания репозитория: %v", err)
	}

	user, err := repo.ValidateCredentials("test", "test")
	if err != nil {
		t.Fatalf("Валидные учетные данные отклонены: %v", err)
	}
	if user.Username != "test" {
		t.Errorf("Неверное имя пользователя: %s", user.Username)
	}

	if _, err := repo.ValidateCredentials("test", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("Ожидалась ErrInvalidCredentials, получена: %v", err)
	}
	if _, err := repo.ValidateCredentials("nobody", "test"); err != ErrInvalidCredentials {
		t.Errorf("Ожидалась ErrInvalidCredentials для несуществующего пользователя, получена: %v", err)
	}
}

// TestMemoryRepoCreateUser тестирует создание и поиск пользователей
func TestMemoryRepoCreateUser(t *testing.T) {
	repo, err := NewMemoryUserRepo()
	if err != nil {
		t.Fatalf("Ошибка создания репозитория: %v", err)
	}

	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("Ошибка хеширования: %v", err)
	}

	created, err := repo.CreateUser("Builder", hash, false)
	if err != nil {
		t.Fatalf("Ошибка создания пользователя: %v", err)
	}

	// Поиск без учета регистра
	found, err := repo.GetUserByUsername("builder")
	if err != nil {
		t.Fatalf("Пользователь не найден: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("Найден не тот пользователь: %d != %d", found.ID, created.ID)
	}

	byID, err := repo.GetUserByID(created.ID)
	if err != nil {
		t.Fatalf("Поиск по ID не удался: %v", err)
	}
	if byID.Username != "Builder" {
		t.Errorf("Неверное имя: %s", byID.Username)
	}

	// Повторная регистрация того же имени
	if _, err := repo.CreateUser("BUILDER", hash, false); err != ErrUserExists {
		t.Errorf("Ожидалась ErrUserExists, получена: %v", err)
	}
}
