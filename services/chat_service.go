package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"context"
)

type IChatService interface {
	Send(ctx context.Context, cmd domain.SendCommand) (*domain.Message, error)
	History(handle, other string, cursor *string) ([]domain.Message, *string, error)
	Availability(handle string) (domain.Availability, error)
	SetAvailability(handle string, availability domain.Availability) error
	Connect(handle string, s contract.EventSink)
	Disconnect(handle string, s contract.EventSink)
}

// ChatService is the thin application facade the transport layer talks to.
// Delivery decisions live in the router; this layer only forwards.
type ChatService struct {
	router        *runtime.Router
	conversations repositories.IConversationRepository
	users         repositories.IUserRepository
	registry      contract.IRegistry
}

func NewChatService(router *runtime.Router, conversations repositories.IConversationRepository,
	users repositories.IUserRepository, registry contract.IRegistry) *ChatService {
	return &ChatService{
		router:        router,
		conversations: conversations,
		users:         users,
		registry:      registry,
	}
}

// Send routes one message. A nil message means it was delivered live;
// otherwise the returned message is the synthetic reply.
func (s *ChatService) Send(ctx context.Context, cmd domain.SendCommand) (*domain.Message, error) {
	return s.router.Route(ctx, cmd)
}

func (s *ChatService) History(handle, other string, cursor *string) ([]domain.Message, *string, error) {
	return s.conversations.History(handle, other, cursor)
}

func (s *ChatService) Availability(handle string) (domain.Availability, error) {
	user, err := s.users.GetUserByHandle(handle)
	if err != nil {
		return "", err
	}
	return user.Availability, nil
}

func (s *ChatService) SetAvailability(handle string, availability domain.Availability) error {
	return s.users.SetAvailability(handle, availability)
}

func (s *ChatService) Connect(handle string, sink contract.EventSink) {
	s.registry.Subscribe(handle, sink)
}

func (s *ChatService) Disconnect(handle string, sink contract.EventSink) {
	s.registry.Unsubscribe(handle, sink)
}
