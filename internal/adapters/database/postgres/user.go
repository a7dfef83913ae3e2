package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
)

type UserStorage struct {
	db *gorm.DB
}

func NewUserStorage(db *gorm.DB) *UserStorage {
	return &UserStorage{
		db: db,
	}
}

// Login finds the user with the given email, creating it on first sign-in,
// and records the login time.
func (s *UserStorage) Login(ctx context.Context, email string, at time.Time) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user := entity.User{Email: email, LastLoginAt: at}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_login_at": at}),
		}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}

	// Some drivers return no id for the conflicting row.
	if user.ID == "" {
		err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err != nil {
			return nil, err
		}
	}
	return &user, nil
}
