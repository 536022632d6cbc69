package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/repositories"
	"context"
	"log/slog"
)

// Router is the delivery decision point for every inbound send. It resolves
// both identities, records the message through the ledger, then either
// pushes to the recipient's live channel or hands over to the Responder.
//
// Caller-visible contract: a live delivery returns (nil, nil); an
// unavailable recipient returns the synthetic reply.
type Router struct {
	log           *slog.Logger
	users         repositories.IUserRepository
	conversations repositories.IConversationRepository
	registry      contract.IRegistry
	responder     *Responder
}

func NewRouter(log *slog.Logger, users repositories.IUserRepository,
	conversations repositories.IConversationRepository,
	registry contract.IRegistry, responder *Responder) *Router {
	return &Router{
		log:           log,
		users:         users,
		conversations: conversations,
		registry:      registry,
		responder:     responder,
	}
}

// Route delivers one message. Both parties are resolved before any write,
// so an unknown handle on either side fails without leaving a partial
// conversation or message behind.
func (r *Router) Route(ctx context.Context, cmd domain.SendCommand) (*domain.Message, error) {
	if _, err := r.users.GetUserByHandle(cmd.Sender); err != nil {
		return nil, err
	}
	recipient, err := r.users.GetUserByHandle(cmd.Recipient)
	if err != nil {
		return nil, err
	}

	message, err := r.conversations.Record(cmd)
	if err != nil {
		return nil, err
	}

	if sink, connected := r.registry.Get(cmd.Recipient); connected && recipient.Participant().Reachable() {
		if err := sink.Consume(ctx, message); err == nil {
			r.log.Debug("message delivered live",
				"conversation", message.Conversation,
				"position", message.Position)
			return nil, nil
		}
		// Channel gone stale between the registry read and the push.
		r.log.Warn("live push failed, falling back to synthetic reply",
			"recipient", cmd.Recipient)
	}

	reply, err := r.responder.Respond(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
