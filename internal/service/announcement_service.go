package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone-be/internal/domain"
	"gamezone-be/internal/storage"
	"gamezone-be/pkg/logger"
)

// AnnouncementService manages the announcements board. The whole board is
// one JSON array under a single key; every mutation is a full-collection
// read-modify-write and the last writer wins, which is fine for a
// single-admin board.
type AnnouncementService struct {
	store storage.Store
	log   *logger.Logger

	now func() time.Time
}

// NewAnnouncementService creates a new announcement service.
func NewAnnouncementService(store storage.Store, log *logger.Logger) *AnnouncementService {
	return &AnnouncementService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// List returns the stored board or, when nothing has ever been posted, the
// seeded welcome entry. The seed is materialized in memory only; List never
// persists it.
func (s *AnnouncementService) List(ctx context.Context) ([]domain.Announcement, error) {
	board, found, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.Announcement{domain.DefaultAnnouncement(s.now().UnixMilli())}, nil
	}
	return board, nil
}

// Create prepends a new announcement. The id is derived from the current
// millisecond timestamp; with a single admin actor that is unique enough.
func (s *AnnouncementService) Create(ctx context.Context, title, content, author string) (*domain.Announcement, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, appErrValidation("Please fill in all fields.")
	}

	board, _, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	nowMs := s.now().UnixMilli()
	entry := domain.Announcement{
		ID:        fmt.Sprintf("announcement_%d", nowMs),
		Title:     title,
		Content:   content,
		Author:    author,
		Timestamp: nowMs,
	}
	board = append([]domain.Announcement{entry}, board...)

	if err := s.write(ctx, board); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update rewrites title, content and timestamp of the announcement with the
// given id. An unknown id is a no-op.
func (s *AnnouncementService) Update(ctx context.Context, id, title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return appErrValidation("Please fill in all fields.")
	}

	board, _, err := s.read(ctx)
	if err != nil {
		return err
	}

	for i := range board {
		if board[i].ID == id {
			board[i].Title = title
			board[i].Content = content
			board[i].Timestamp = s.now().UnixMilli()
			break
		}
	}

	return s.write(ctx, board)
}

// Delete removes an announcement. The seeded default is never stored and
// therefore never deletable; asking for it is rejected with a user-facing
// message regardless of board contents.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if id == domain.DefaultAnnouncementID {
		return appErrValidation("Cannot delete the default announcement.")
	}

	board, _, err := s.read(ctx)
	if err != nil {
		return err
	}

	kept := board[:0]
	for _, a := range board {
		if a.ID != id {
			kept = append(kept, a)
		}
	}

	return s.write(ctx, kept)
}

func (s *AnnouncementService) read(ctx context.Context) ([]domain.Announcement, bool, error) {
	raw, err := s.store.Get(ctx, storage.KeyAnnouncements, storage.ScopeShared)
	if errors.Is(err, storage.ErrNotFound) {
		return []domain.Announcement{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read announcements: %w", err)
	}

	var board []domain.Announcement
	if err := domain.Unmarshal([]byte(raw), &board); err != nil {
		return nil, false, fmt.Errorf("failed to decode announcements: %w", err)
	}
	return board, true, nil
}

func (s *AnnouncementService) write(ctx context.Context, board []domain.Announcement) error {
	raw, err := domain.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode announcements: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyAnnouncements, string(raw), storage.ScopeShared); err != nil {
		return appErrWrite("Failed to save announcement.", err)
	}
	return nil
}
