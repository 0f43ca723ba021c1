// Package users — service.go содержит бизнес-логику регистрации, входа и профилей.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/goware/emailx"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/stories"
	"serotonyl.ru/newsboard/internal/metrics"
)

// Store — то, что сервису нужно от таблицы users.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	FindConflict(ctx context.Context, email, username string) (*User, error)
}

// StoryLister и CommentLister дают истории и комментарии автора для профиля.
type StoryLister interface {
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]stories.Story, error)
}

type CommentLister interface {
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]comments.Comment, error)
}

type Service struct {
	repo     Store
	stories  StoryLister
	comments CommentLister
	tokens   *auth.TokenIssuer
	cfg      *config.Config
	argon    auth.Argon2Params
}

func NewService(repo Store, st StoryLister, cm CommentLister, tokens *auth.TokenIssuer, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		stories:  st,
		comments: cm,
		tokens:   tokens,
		cfg:      cfg,
		argon:    auth.DefaultArgon2Params,
	}
}

// Register проверяет ввод, создаёт пользователя и сразу выдаёт токен.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	username := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, "", common.ErrMissingFields
	}
	if len([]rune(in.Password)) < s.cfg.PasswordMinLength {
		return nil, "", common.ErrPasswordTooShort
	}
	if err := emailx.ValidateFast(email); err != nil {
		return nil, "", common.ErrInvalidEmail
	}
	email = emailx.Normalize(email)

	// Быстрая проверка до хеширования. Гонку двух регистраций закрывает UNIQUE в БД.
	existing, err := s.repo.FindConflict(ctx, email, username)
	switch {
	case err == nil && existing.Email == email:
		return nil, "", common.ErrEmailTaken
	case err == nil:
		return nil, "", common.ErrUsernameTaken
	case !errors.Is(err, common.ErrUserNotFound):
		return nil, "", err
	}

	hash, err := auth.HashPasswordWithParams(in.Password, s.argon)
	if err != nil {
		return nil, "", err
	}

	about := defaultAbout
	user := &User{
		Username: username,
		Email:    email,
		Password: hash,
		About:    &about,
		Karma:    s.cfg.UserStartingKarma,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	metrics.UsersRegistered.Inc()

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Новый пользователь зарегистрирован")
	return user, token, nil
}

// Login принимает email или username. Неверный логин и неверный пароль
// неразличимы снаружи: оба дают ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, string, error) {
	login := strings.TrimSpace(in.Email)
	if login == "" || in.Password == "" {
		return nil, "", common.ErrMissingFields
	}
	if strings.Contains(login, "@") {
		login = emailx.Normalize(login)
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.VerifyPassword(in.Password, user.Password) {
		log.WithField("user_id", user.ID).Debug("Неверный пароль")
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me — текущий пользователь по id из токена.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Profile ищет сначала по username, затем по UUID, если параметр им является.
func (s *Service) Profile(ctx context.Context, ref string) (*Profile, error) {
	user, err := s.repo.GetByUsername(ctx, ref)
	if errors.Is(err, common.ErrUserNotFound) {
		id, perr := uuid.Parse(ref)
		if perr != nil {
			return nil, common.ErrUserNotFound
		}
		user, err = s.repo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	authored, err := s.stories.ByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки историй профиля: %w", err)
	}
	written, err := s.comments.ByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки комментариев профиля: %w", err)
	}
	if authored == nil {
		authored = []stories.Story{}
	}
	if written == nil {
		written = []comments.Comment{}
	}

	return &Profile{
		ID:        user.ID,
		Username:  user.Username,
		About:     user.About,
		Karma:     user.Karma,
		CreatedAt: user.CreatedAt,
		Stories:   authored,
		Comments:  written,
	}, nil
}

func (s *Service) issue(u *User) (string, error) {
	return s.tokens.Issue(auth.Identity{ID: u.ID, Email: u.Email, Username: u.Username})
}
