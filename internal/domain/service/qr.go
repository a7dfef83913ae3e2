package service

import (
	"context"
	"image"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
	qr "github.com/jooksuklubid/runclubs/pkg/qrcode"
)

type qrClubService interface {
	GetPublic(ctx context.Context, id string) (*entity.Club, error)
}

type logoOpener interface {
	Open(url string) (image.Image, error)
}

// QrService renders QR codes pointing at public club pages.
type QrService struct {
	clubs   qrClubService
	logos   logoOpener
	qrCFG   qr.Config
	baseURL string
	logger  *types.Logger
}

func NewQrService(qrCFG qr.Config, clubs qrClubService, logos logoOpener, baseURL string, logger *types.Logger) *QrService {
	return &QrService{
		clubs:   clubs,
		logos:   logos,
		qrCFG:   qrCFG,
		baseURL: baseURL,
		logger:  logger,
	}
}

// ClubQR returns a PNG QR code for the page of a published club,
// with the club logo in the centre when one is stored.
func (s *QrService) ClubQR(ctx context.Context, clubID string) ([]byte, error) {
	club, err := s.clubs.GetPublic(ctx, clubID)
	if err != nil {
		return nil, err
	}

	cfg := s.qrCFG
	cfg.Content = club.Link(s.baseURL)
	if club.LogoURL != "" {
		logo, errOpen := s.logos.Open(club.LogoURL)
		if errOpen != nil {
			s.logger.Warnf("failed to open logo of club %s, rendering without it: %v", club.ID, errOpen)
		} else {
			cfg.Logo = logo
		}
	}

	return cfg.Generate()
}
