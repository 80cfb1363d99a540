package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"chatbot/internal/domain"
	"chatbot/internal/logger"
	"chatbot/internal/session"
	"chatbot/internal/stream"
)

const (
	Prompt     = "You: "
	Welcome    = `Welcome to the AI Chatbot! Type "exit" or "quit" to end the conversation.`
	Farewell   = "Goodbye! Thanks for chatting."
	NoResponse = "[No response received]"
)

// Console is the line-oriented terminal the conversation runs on. Write
// receives reply fragments as they stream in; BeginReply and EndReply frame
// every answer.
type Console interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Write(fragment string) error
	BeginReply()
	EndReply()
	Notice(text string)
	Fail(err error)
	Close() error
}

// HistoryStore keeps one transcript per session id.
type HistoryStore interface {
	GetOrCreate(id string) *session.Transcript
	Append(id string, msg domain.Message) error
}

// ServiceAnswerer answers /service queries from the catalog.
type ServiceAnswerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Options tune an Orchestrator.
type Options struct {
	SessionID string
	// MaxMessages bounds the non-system messages sent with each request.
	// Zero sends the whole transcript.
	MaxMessages int
}

// Orchestrator drives the read, classify, respond loop for one session.
type Orchestrator struct {
	console   Console
	store     HistoryStore
	generator domain.Generator
	services  ServiceAnswerer
	opts      Options
}

func NewOrchestrator(console Console, store HistoryStore, generator domain.Generator, services ServiceAnswerer, opts Options) *Orchestrator {
	if opts.SessionID == "" {
		opts.SessionID = "default"
	}
	return &Orchestrator{console: console, store: store, generator: generator, services: services, opts: opts}
}

// Run prints the welcome banner and processes input lines one at a time until
// the user exits, input ends or ctx is cancelled. The console is closed on
// return. Failed turns are reported on the console and do not end the loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.console.Close()
	log := logger.FromContext(ctx).With(zap.String("session", o.opts.SessionID))
	o.store.GetOrCreate(o.opts.SessionID)
	o.console.Notice(Welcome)

	for {
		line, err := o.console.ReadLine(ctx, Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				o.console.Notice(Farewell)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		exit, err := o.Handle(ctx, line)
		if err != nil {
			log.Warn("turn failed", zap.Error(err))
		}
		if exit {
			return nil
		}
		if ctx.Err() != nil {
			o.console.Notice(Farewell)
			return nil
		}
	}
}

// Handle processes a single input line. It reports whether the conversation
// should end, and returns the error of a failed turn after it has been shown
// to the user.
func (o *Orchestrator) Handle(ctx context.Context, line string) (bool, error) {
	switch cmd := Classify(line).(type) {
	case CommandExit:
		o.console.Notice(Farewell)
		return true, nil
	case CommandServiceQuery:
		return false, o.serviceQuery(ctx, cmd.Query)
	case CommandPlainChat:
		if strings.TrimSpace(cmd.Text) == "" {
			return false, nil
		}
		return false, o.plainChat(ctx, cmd.Text)
	default:
		return false, fmt.Errorf("unhandled command %T", cmd)
	}
}

func (o *Orchestrator) serviceQuery(ctx context.Context, query string) error {
	answer, err := o.services.Answer(ctx, query)
	if err != nil {
		o.console.Fail(err)
		return err
	}
	o.console.BeginReply()
	werr := o.console.Write(answer)
	o.console.EndReply()
	return werr
}

// plainChat streams a reply to text over the session transcript. On failure
// the user message is rolled back so no unanswered turn is left behind.
func (o *Orchestrator) plainChat(ctx context.Context, text string) error {
	id := o.opts.SessionID
	transcript := o.store.GetOrCreate(id)
	before := transcript.Len()
	if err := o.store.Append(id, domain.Message{Role: domain.RoleUser, Content: text}); err != nil {
		return err
	}

	o.console.BeginReply()
	res, err := o.streamReply(ctx, transcript.Window(o.opts.MaxMessages))
	o.console.EndReply()
	if err != nil {
		transcript.RollbackTo(before)
		o.console.Fail(err)
		return err
	}
	logger.FromContext(ctx).Debug("reply streamed",
		zap.String("session", id),
		zap.Int("fragments", res.Fragments),
		zap.Int("chars", len(res.FullText)),
	)
	if !res.ReceivedAny {
		o.console.Notice(NoResponse)
	}
	return o.store.Append(id, domain.Message{Role: domain.RoleAssistant, Content: res.FullText})
}

func (o *Orchestrator) streamReply(ctx context.Context, messages []domain.Message) (stream.Result, error) {
	src, err := o.generator.Stream(ctx, messages)
	if err != nil {
		return stream.Result{}, err
	}
	return stream.Dispatch(ctx, src, o.console)
}
