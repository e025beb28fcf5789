package impl

import (
	"context"
	"log/slog"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/errors"
	"campus/internal/usecase"
)

// chatService implements the ChatUsecase interface.
type chatService struct {
	repo     repository.ChatRepository
	realtime service.RealtimeService
	logger   *slog.Logger
}

// NewChatService is the constructor for chatService.
func NewChatService(
	repo repository.ChatRepository,
	realtime service.RealtimeService,
	logger *slog.Logger,
) usecase.ChatUsecase {
	return &chatService{repo: repo, realtime: realtime, logger: logger}
}

func (srv *chatService) Groups(ctx context.Context) (*entity.List[entity.ChatGroup], error) {
	groups, err := srv.repo.ListGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list chat groups")
	}

	return groups, nil
}

// OpenWindow subscribes to the live feed first, then loads the history page
// in the background, so no message published in between is lost.
func (srv *chatService) OpenWindow(ctx context.Context, courseID, chatGroupID int64) (usecase.ChatWindow, error) {
	window := newChatWindow(chatGroupID, srv.logger)

	unsubscribe, err := srv.realtime.Subscribe(ctx, chatGroupID, window.onEvent)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe chat group")
	}
	window.unsubscribe = unsubscribe

	go srv.loadHistory(ctx, window, courseID, chatGroupID)

	return window, nil
}

func (srv *chatService) loadHistory(ctx context.Context, window *chatWindow, courseID, chatGroupID int64) {
	page, err := srv.repo.ListMessages(ctx, courseID, chatGroupID, entity.ListParams{})
	if err != nil {
		srv.logger.Warn("chat history load failed",
			slog.Int64("chat_group_id", chatGroupID), slog.Any("error", err))
		window.setErr(errors.Wrap(err, "load chat history"))

		return
	}

	window.appendHistory(page.Results)
}

func (srv *chatService) Send(chatGroupID int64, text string) error {
	if text == "" {
		return errors.New("message text must not be empty")
	}

	req := entity.NewMessageRequest{
		Text:        text,
		MessageType: entity.MessageTypeText,
		ChatGroup:   chatGroupID,
	}
	if err := srv.realtime.SendMessage(chatGroupID, req); err != nil {
		return errors.Wrap(err, "send chat message")
	}

	return nil
}

func (srv *chatService) NotifyTyping(chatGroupID int64) error {
	if err := srv.realtime.SendTyping(chatGroupID); err != nil {
		return errors.Wrap(err, "send typing notification")
	}

	return nil
}
