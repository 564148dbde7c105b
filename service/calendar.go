package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/model"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
)

// syncDatePattern is the only date shape forwarded to the calendar. Items
// with any other date value are skipped at this boundary, not during
// extraction.
var syncDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CalendarEvent is one all-day event to be created.
type CalendarEvent struct {
	Summary     string
	Description string
	Date        string // YYYY-MM-DD
}

// EventCreator is the external calendar collaborator. Tests count
// insertions with a fake; production uses the Google Calendar API.
type EventCreator interface {
	CreateEvent(ctx context.Context, event CalendarEvent) error
}

// CalendarService syncs extracted deadlines to a calendar.
type CalendarService struct {
	creator EventCreator
}

func NewCalendarService(creator EventCreator) *CalendarService {
	return &CalendarService{creator: creator}
}

// SyncDeadlines creates one all-day event per deadline whose date matches
// YYYY-MM-DD. There is no rollback: events created before a failure remain,
// and the returned count is always the number actually created.
func (s *CalendarService) SyncDeadlines(ctx context.Context, deadlines []model.Deadline, docName string) (int, error) {
	created := 0
	for _, item := range deadlines {
		if !syncDatePattern.MatchString(item.Date) {
			logger.Debug(ctx, "skipping deadline without resolvable date",
				"obligation", item.Obligation, "date", item.Date)
			continue
		}

		event := CalendarEvent{
			Summary:     fmt.Sprintf("⚠️ LegalEase Deadline: %s", item.Obligation),
			Description: fmt.Sprintf("Extracted from %s by LegalEase AI.", docName),
			Date:        item.Date,
		}
		if err := s.creator.CreateEvent(ctx, event); err != nil {
			return created, fmt.Errorf("calendar API error after %d events: %w", created, err)
		}
		created++
	}
	return created, nil
}

// googleEventCreator inserts events through the Google Calendar API using
// externally managed OAuth credentials.
type googleEventCreator struct {
	service    *calendar.Service
	calendarID string
}

// NewGoogleEventCreator loads the OAuth client secret and stored token from
// the configured files. Missing files are a configuration error, reported
// as such rather than as a pipeline failure.
func NewGoogleEventCreator(ctx context.Context, cfg *config.CalendarConfig) (EventCreator, error) {
	credBytes, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not readable. Add your Google Cloud credentials to enable Calendar Sync", ErrMissingCredentials, cfg.CredentialsFile)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	tokenBytes, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not readable. Complete the OAuth flow to create it", ErrMissingCredentials, cfg.TokenFile)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, fmt.Errorf("parse stored token: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &googleEventCreator{service: svc, calendarID: cfg.CalendarID}, nil
}

func (g *googleEventCreator) CreateEvent(ctx context.Context, event CalendarEvent) error {
	_, err := g.service.Events.Insert(g.calendarID, &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &calendar.EventDateTime{Date: event.Date, TimeZone: "UTC"},
		End:         &calendar.EventDateTime{Date: event.Date, TimeZone: "UTC"},
	}).Context(ctx).Do()
	return err
}
