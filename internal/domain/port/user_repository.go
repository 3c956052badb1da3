package port

import (
	"context"

	"polyp-dashboard/internal/domain/entity"
)

// UserRepository хранит сессии диалога бота: состояние и ожидающую эталон маску.
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет состояние существующего пользователя. Возврат в главное меню
	// сбрасывает сохранённую маску. Неизвестный пользователь даёт ErrNotFound.
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
