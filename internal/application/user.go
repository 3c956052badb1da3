package app

import (
	"context"
	"errors"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
)

// ErrNoPrediction эталон прислан раньше маски предсказания.
var ErrNoPrediction = errors.New("prediction mask is not found")

// UserService ведёт состояние диалога с пользователем бота.
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

// BeginCheck переводит пользователя в ожидание маски предсказания.
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPrediction)
}

// Cancel возвращает в главное меню и забывает присланную маску.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, user.ID, entity.StateMainMenu); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, chatID)
}

// StorePrediction запоминает маску предсказания и ждёт эталон.
func (s *UserService) StorePrediction(ctx context.Context, userID, chatID int64, mask []byte) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(entity.StateAwaitingTruth)
		u.Prediction = mask
		return nil
	})
}

// TakePrediction забирает сохранённую маску и переводит пользователя в обработку.
func (s *UserService) TakePrediction(ctx context.Context, userID, chatID int64) ([]byte, error) {
	var mask []byte
	_, err := s.update(ctx, userID, chatID, func(u *entity.User) error {
		if u.State != entity.StateAwaitingTruth || len(u.Prediction) == 0 {
			return ErrNoPrediction
		}
		mask = u.Prediction
		u.Prediction = nil
		u.SetState(entity.StateProcessing)
		return nil
	})
	return mask, err
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, fn func(*entity.User) error) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
