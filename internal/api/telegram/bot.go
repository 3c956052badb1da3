package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "polyp-dashboard/internal/application"
	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/segmentation"
	"polyp-dashboard/internal/infrastructure/vision"
)

const (
	msgStart = `👋 Привет! Я бот для оценки сегментации полипов.

Я сравниваю маску, предсказанную моделью, с эталонной разметкой и считаю Precision, Recall, Dice и IoU.

📋 Команды:
/check — начать проверку
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Пришлите маску, предсказанную моделью
3️⃣ Пришлите эталонную маску того же размера
4️⃣ Получите метрики и классификацию

💡 Рекомендации:
• Отправляйте маски файлом, без сжатия
• Белый цвет означает полип, чёрный фон
• Размеры масок должны совпадать

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPrediction = "📤 Отправьте маску, предсказанную моделью."
	msgAwaitingTruth      = "✅ Маска получена. Теперь отправьте эталонную маску."
	msgCancelled          = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendMask           = "📤 Пожалуйста, отправьте маску изображением или файлом. /check начинает проверку."
	msgUnknownCommand     = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing         = "⏳ Считаю метрики..."
	msgShapeMismatch      = "⚠️ Размеры масок не совпадают. Отправьте /check и попробуйте снова."
	msgDecodeError        = "⚠️ Не удалось прочитать изображение. Отправьте /check и попробуйте снова."
	msgProcessingError    = "⚠️ Не удалось обработать маски. Попробуйте ещё раз."
)

// Evaluator сравнивает маску предсказания с эталоном
type Evaluator interface {
	Evaluate(ctx context.Context, prediction, groundTruth []byte, threshold int) (*app.Evaluation, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	users     *app.UserService
	evaluator Evaluator
	threshold int
	fetch     func(fileID string) ([]byte, error)
	log       zerolog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, evaluator Evaluator, threshold int, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	b := &Bot{
		api:       api,
		sender:    api,
		users:     users,
		evaluator: evaluator,
		threshold: threshold,
		log:       log,
	}
	b.fetch = b.downloadFile
	return b, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("get user")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if fileID, ok := maskFileID(msg); ok {
		b.handleMask(ctx, msg, user, fileID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendMask)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		_, err = b.users.BeginCheck(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgAwaitingPrediction)

	case "cancel":
		_, err = b.users.Cancel(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		b.log.Error().Err(err).Str("command", msg.Command()).Msg("update user state")
	}
}

// handleMask принимает очередную маску. Вне ожидания эталона маска начинает новую проверку
// как предсказание, в ожидании эталона она сравнивается с сохранённым предсказанием.
func (b *Bot) handleMask(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	data, err := b.fetch(fileID)
	if err != nil {
		b.log.Error().Err(err).Msg("download mask")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if user.State != entity.StateAwaitingTruth {
		if _, err := b.users.StorePrediction(ctx, user.ID, user.ChatID, data); err != nil {
			b.log.Error().Err(err).Msg("store prediction")
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingTruth)
		return
	}

	prediction, err := b.users.TakePrediction(ctx, user.ID, user.ChatID)
	if err != nil {
		b.log.Warn().Err(err).Msg("take prediction")
		b.sendMessage(msg.Chat.ID, msgAwaitingPrediction)
		return
	}
	defer func() {
		if _, err := b.users.SetState(ctx, user.ID, user.ChatID, entity.StateMainMenu); err != nil {
			b.log.Error().Err(err).Msg("reset user state")
		}
	}()

	b.sendMessage(msg.Chat.ID, msgProcessing)

	eval, err := b.evaluator.Evaluate(ctx, prediction, data, b.threshold)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.ID).Msg("evaluate masks")
		b.sendMessage(msg.Chat.ID, errorMessage(err))
		return
	}

	b.log.Info().
		Int64("user_id", user.ID).
		Float64("dice", eval.Result.Dice).
		Float64("iou", eval.Result.IoU).
		Str("label", string(eval.Label)).
		Msg("masks evaluated")
	b.sendMessage(msg.Chat.ID, formatEvaluation(eval))
}

// maskFileID выбирает файл из сообщения: документ или фото в максимальном разрешении
func maskFileID(msg *tgbotapi.Message) (string, bool) {
	if msg.Document != nil {
		return msg.Document.FileID, true
	}
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	return "", false
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, segmentation.ErrShapeMismatch):
		return msgShapeMismatch
	case errors.Is(err, vision.ErrDecode), errors.Is(err, app.ErrEmptyUpload):
		return msgDecodeError
	default:
		return msgProcessingError
	}
}

var labelNames = map[segmentation.Label]string{
	segmentation.LabelCancer: "🔴 подозрение на рак",
	segmentation.LabelPolyp:  "🟠 полип",
	segmentation.LabelNormal: "🟢 норма",
}

// formatEvaluation форматирует метрики в процентах
func formatEvaluation(eval *app.Evaluation) string {
	r := eval.Result
	return fmt.Sprintf(`📊 Результат сравнения масок (%d×%d)

Precision: %s
Recall: %s
Dice: %s
IoU: %s

Классификация: %s`,
		eval.Width, eval.Height,
		percent(r.Precision), percent(r.Recall), percent(r.Dice), percent(r.IoU),
		labelNames[eval.Label])
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}
