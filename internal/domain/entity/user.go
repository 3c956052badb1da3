package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu           UserState = "main_menu"           // В главном меню
	StateAwaitingPrediction UserState = "awaiting_prediction" // Ожидание маски предсказания
	StateAwaitingTruth      UserState = "awaiting_truth"      // Ожидание эталонной маски
	StateProcessing         UserState = "processing"          // Подсчёт метрик
)

// User представляет пользователя бота
type User struct {
	ID         int64     // Telegram User ID
	ChatID     int64     // Telegram Chat ID
	State      UserState // Текущее состояние пользователя
	Prediction []byte    // Маска предсказания, ждущая эталон
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
	if state == StateMainMenu {
		u.Prediction = nil
	}
}
