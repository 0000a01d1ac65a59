// ABOUTME: Service turns one inbound message into chain and profile operations
// ABOUTME: Each request is scoped to the sender's profile and active table
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/chain"
	"github.com/harper/trigrambot/internal/command"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/models"
	"github.com/harper/trigrambot/internal/profile"
)

// Message is one inbound unit of work from a transport
type Message struct {
	ID       string
	UserID   string
	Text     string
	Document bool
}

// Service handles messages against the chain model and the profile cache
type Service struct {
	model    *chain.Model
	profiles *profile.Cache
	log      *log.Logger
}

// NewService creates a new Service
func NewService(model *chain.Model, profiles *profile.Cache, logger *log.Logger) *Service {
	return &Service{
		model:    model,
		profiles: profiles,
		log:      logging.Component(logger, "bot"),
	}
}

// Process routes m to Handle or IngestDocument
func (s *Service) Process(ctx context.Context, m Message) (Reply, error) {
	if m.Document {
		return s.IngestDocument(ctx, m.UserID, m.Text)
	}
	return s.Handle(ctx, m.UserID, m.Text)
}

// Handle parses text from userID and runs the request it carries
func (s *Service) Handle(ctx context.Context, userID, text string) (Reply, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return none(), err
	}

	req := command.Parse(text)
	s.log.Debug("request", "user", userID, "kind", req.Kind)

	switch req.Kind {
	case command.GenerateByWord:
		t, err := s.activeTable(ctx, p)
		if err != nil {
			return none(), err
		}
		out, err := s.model.Generate(ctx, t, req.Arg)
		if err != nil {
			return none(), err
		}
		return toMessage(out), nil

	case command.GetCountByWord:
		t, err := s.activeTable(ctx, p)
		if err != nil {
			return none(), err
		}
		n, ok, err := s.model.CountFor(ctx, t, req.Arg)
		if err != nil {
			return none(), err
		}
		if !ok {
			return toMessage(emptyWordText), nil
		}
		return toMessage(countText(n)), nil

	case command.DisableAutoReply, command.EnableAutoReply:
		p.AnswerMode = req.Kind == command.EnableAutoReply
		if _, err := s.profiles.Update(ctx, p); err != nil {
			return none(), err
		}
		return none(), nil

	case command.ChangeActiveTable:
		t, err := s.model.CreateTable(ctx, req.Arg)
		if errors.Is(err, models.ErrInvalidTableName) {
			return toMessage(invalidTableText(req.Arg)), nil
		}
		if err != nil {
			return none(), err
		}
		p.ActiveTable = t.Name()
		if _, err := s.profiles.Update(ctx, p); err != nil {
			return none(), err
		}
		s.log.Info("active table changed", "user", userID, "table", t.Name())
		return none(), nil

	case command.GetActiveTable:
		return toMessage(activeTableText(p.ActiveTable)), nil

	case command.ListTables:
		if !p.IsAdmin {
			return toMessage(adminOnlyText), nil
		}
		tables, err := s.model.ListTables(ctx)
		if err != nil {
			return none(), err
		}
		names := make([]string, 0, len(tables))
		for _, t := range tables {
			names = append(names, t.Name())
		}
		return toMessage(strings.Join(names, "\n")), nil

	case command.AdminHelp:
		if !p.IsAdmin {
			return toMessage(adminOnlyText), nil
		}
		return toChat(adminHelpText), nil

	case command.NewUserGreeting:
		return toChat(greetingText), nil

	case command.Help:
		return toChat(helpText), nil
	}

	return s.learn(ctx, p, req.Text)
}

// learn ingests plain text and, in answer mode, replies with a fresh sentence.
func (s *Service) learn(ctx context.Context, p models.Profile, text string) (Reply, error) {
	t, err := s.activeTable(ctx, p)
	if err != nil {
		return none(), err
	}
	n, err := s.model.Ingest(ctx, t, text)
	if err != nil {
		return none(), err
	}
	if n == 0 || !p.AnswerMode {
		return none(), nil
	}
	out, err := s.model.Generate(ctx, t, "")
	if err != nil {
		return none(), err
	}
	return toChat(out), nil
}

// IngestDocument learns text as one message when userID is an admin.
// Nobody gets a reply either way.
func (s *Service) IngestDocument(ctx context.Context, userID, text string) (Reply, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return none(), err
	}
	if !p.IsAdmin {
		s.log.Warn("document from non-admin ignored", "user", userID)
		return none(), nil
	}
	t, err := s.activeTable(ctx, p)
	if err != nil {
		return none(), err
	}
	n, err := s.model.Ingest(ctx, t, text)
	if err != nil {
		return none(), err
	}
	s.log.Info("document ingested", "user", userID, "table", t.Name(), "windows", n)
	return none(), nil
}

// activeTable returns a handle for the profile's table, creating it if needed.
func (s *Service) activeTable(ctx context.Context, p models.Profile) (models.Table, error) {
	t, err := s.model.CreateTable(ctx, p.ActiveTable)
	if err != nil {
		return models.Table{}, fmt.Errorf("active table for %s: %w", p.UserID, err)
	}
	return t, nil
}
