package rest

import (
	"context"
	"fmt"
	"log/slog"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/infra/httpclient"
)

type chatRepository struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewChatRepository is the constructor for chatRepository.
func NewChatRepository(client *httpclient.Client, logger *slog.Logger) repository.ChatRepository {
	return &chatRepository{client: client, logger: logger}
}

func (r *chatRepository) ListGroups(ctx context.Context) (*entity.List[entity.ChatGroup], error) {
	return httpclient.DoList[entity.ChatGroup](ctx, r.client, "/course/chat_groups/", nil)
}

func (r *chatRepository) ListMessages(ctx context.Context, courseID, chatGroupID int64, params entity.ListParams) (*entity.List[entity.ChatMessage], error) {
	return httpclient.DoList[entity.ChatMessage](ctx, r.client,
		fmt.Sprintf("/course/%d/chat/%d/message/", courseID, chatGroupID), params.Query())
}
