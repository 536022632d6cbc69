package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	// PlaceholderReply is recorded when the generation call times out or fails.
	PlaceholderReply = "User is unavailable"

	replyInstruction = "I want you to behave like a human and provide an appropriate " +
		"response to the above in less than 30 words. Use no text edits."
)

type replyOutcome string

const (
	outcomeReplied  replyOutcome = "REPLIED"
	outcomeTimedOut replyOutcome = "TIMED_OUT"
)

type generation struct {
	text string
	err  error
}

// Responder produces the synthetic reply when a recipient is unavailable.
// Each invocation races the external generation call against a fixed
// deadline; whichever resolves first decides the reply text, and the answer
// is appended through the same ledger path as any real message, attributed
// to the original recipient.
type Responder struct {
	log           *slog.Logger
	generator     contract.Generator
	conversations repositories.IConversationRepository
	deadline      time.Duration
}

func NewResponder(log *slog.Logger, generator contract.Generator,
	conversations repositories.IConversationRepository, deadline time.Duration) *Responder {
	return &Responder{
		log:           log,
		generator:     generator,
		conversations: conversations,
		deadline:      deadline,
	}
}

// Respond builds the prompt, runs the deadline race and records exactly one
// reply. It never returns a generation failure to the caller: any error or
// timeout degrades to the placeholder text.
func (r *Responder) Respond(ctx context.Context, original domain.SendCommand) (domain.Message, error) {
	prompt := original.Content + "\n" + replyInstruction

	// The generation context is bounded by the same deadline, so a losing
	// call is cancelled instead of lingering after the race is decided.
	genCtx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	// Buffered by one: the losing branch can always deposit its result and
	// exit, it just never gets read.
	results := make(chan generation, 1)
	go func() {
		text, err := r.generator.Generate(genCtx, prompt)
		results <- generation{text: text, err: err}
	}()

	timer := time.NewTimer(r.deadline)
	defer timer.Stop()

	text := PlaceholderReply
	outcome := outcomeTimedOut
	select {
	case res := <-results:
		switch {
		case res.err != nil:
			r.log.Warn("reply generation failed, using placeholder",
				"recipient", original.Recipient,
				"error", errors.ErrGenerationUnavailable,
				"cause", res.err)
		case strings.TrimSpace(res.text) == "":
			r.log.Warn("reply generation returned empty text, using placeholder",
				"recipient", original.Recipient)
		default:
			text = res.text
			outcome = outcomeReplied
		}
	case <-timer.C:
		r.log.Warn("reply generation deadline elapsed, using placeholder",
			"recipient", original.Recipient,
			"deadline", r.deadline)
	}

	reply, err := r.conversations.RecordReply(original, text, time.Now().UTC())
	if err != nil {
		return domain.Message{}, err
	}

	r.log.Info("synthetic reply recorded",
		"outcome", string(outcome),
		"conversation", reply.Conversation,
		"position", reply.Position)
	return reply, nil
}
