package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

var googleTracer = otel.Tracer("clinic.internal.calendar.google")

// GoogleConfig configures the Google Calendar store.
type GoogleConfig struct {
	CalendarID string
	// TokenFile is an authorized-user token (access + refresh token) produced
	// by a one-time OAuth consent.
	TokenFile string
	// CredentialsFile is the OAuth client secret. Only needed when the token
	// file does not carry client_id/client_secret itself.
	CredentialsFile string
	// Location is used to interpret all-day events.
	Location *time.Location
}

// GoogleStore implements Store on top of Google Calendar v3. The underlying
// *gcal.Service is safe for concurrent use.
type GoogleStore struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	logger     *logging.Logger
}

// authorizedUserToken mirrors the token.json written by Google's OAuth
// helpers for installed apps.
type authorizedUserToken struct {
	Token        string    `json:"token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// NewGoogleStore loads credentials and builds a Google Calendar client.
func NewGoogleStore(ctx context.Context, cfg GoogleConfig, logger *logging.Logger) (*GoogleStore, error) {
	if strings.TrimSpace(cfg.CalendarID) == "" {
		return nil, errors.New("calendar: google calendar id is required")
	}
	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	return NewGoogleStoreWithService(svc, cfg.CalendarID, cfg.Location, logger), nil
}

// NewGoogleStoreWithService wraps an existing service (used by tests to point
// the client at a fake endpoint).
func NewGoogleStoreWithService(svc *gcal.Service, calendarID string, loc *time.Location, logger *logging.Logger) *GoogleStore {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GoogleStore{svc: svc, calendarID: calendarID, loc: loc, logger: logger}
}

func tokenSource(ctx context.Context, cfg GoogleConfig) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("calendar: token file %s not found; complete the OAuth consent once before starting: %w", cfg.TokenFile, err)
	}
	var tok authorizedUserToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("calendar: decode token file: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     tok.ClientID,
		ClientSecret: tok.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	if tok.ClientID == "" {
		secret, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("calendar: token has no client id and credentials file is unreadable: %w", err)
		}
		oauthCfg, err = google.ConfigFromJSON(secret, gcal.CalendarScope)
		if err != nil {
			return nil, fmt.Errorf("calendar: parse credentials file: %w", err)
		}
	}
	if tok.TokenURI != "" {
		oauthCfg.Endpoint.TokenURL = tok.TokenURI
	}

	access := tok.AccessToken
	if access == "" {
		access = tok.Token
	}
	if tok.RefreshToken == "" && access == "" {
		return nil, errors.New("calendar: token file has neither an access token nor a refresh token")
	}
	return oauthCfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  access,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		TokenType:    "Bearer",
	}), nil
}

// ListEvents returns single (expanded) events ordered by start time.
func (s *GoogleStore) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	ctx, span := s.startSpan(ctx, "calendar.list_events")
	defer span.End()

	var out []Event
	call := s.svc.Events.List(s.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			ev, err := s.fromGoogle(item)
			if err != nil {
				s.logger.Warn("calendar: skipping unparseable event", "event_id", item.Id, "error", err)
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "list events", err)
	}
	span.SetAttributes(attribute.Int("calendar.events", len(out)))
	return out, nil
}

// InsertEvent creates the event and returns it with the assigned ID.
func (s *GoogleStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	ctx, span := s.startSpan(ctx, "calendar.insert_event")
	defer span.End()

	created, err := s.svc.Events.Insert(s.calendarID, toGoogle(event)).Context(ctx).Do()
	if err != nil {
		return Event{}, s.fail(span, "insert event", err)
	}
	out, err := s.fromGoogle(created)
	if err != nil {
		// The insert succeeded; keep what we sent and the new ID.
		event.ID = created.Id
		return event, nil
	}
	span.SetAttributes(attribute.String("calendar.event_id", out.ID))
	return out, nil
}

// DeleteEvent removes an event by ID.
func (s *GoogleStore) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := s.startSpan(ctx, "calendar.delete_event")
	defer span.End()
	span.SetAttributes(attribute.String("calendar.event_id", eventID))

	if err := s.svc.Events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		return s.fail(span, "delete event", err)
	}
	return nil
}

func (s *GoogleStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return googleTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("calendar.id", s.calendarID)),
	)
}

func (s *GoogleStore) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return classify(op, err)
}

// classify maps Google API failures onto the store sentinels. 404 and 410
// mean the event is gone; 400 is what Google returns for a malformed event ID.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusGone, http.StatusBadRequest:
			return fmt.Errorf("calendar: %s: %w: %w", op, ErrNotFound, err)
		}
	}
	return fmt.Errorf("calendar: %s: %w: %w", op, ErrUnavailable, err)
}

func toGoogle(e Event) *gcal.Event {
	return &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Visibility:  e.Visibility,
		Start: &gcal.EventDateTime{
			DateTime: e.Start.Format(time.RFC3339),
			TimeZone: e.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: e.End.Format(time.RFC3339),
			TimeZone: e.TimeZone,
		},
	}
}

func (s *GoogleStore) fromGoogle(item *gcal.Event) (Event, error) {
	start, err := s.parseEventTime(item.Start)
	if err != nil {
		return Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := s.parseEventTime(item.End)
	if err != nil {
		return Event{}, fmt.Errorf("end: %w", err)
	}
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Visibility:  item.Visibility,
		Status:      item.Status,
	}
	if item.Start != nil {
		ev.TimeZone = item.Start.TimeZone
	}
	return ev, nil
}

func (s *GoogleStore) parseEventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, errors.New("missing time")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	if dt.Date != "" {
		// All-day events carry a bare date; the end date is exclusive.
		return time.ParseInLocation("2006-01-02", dt.Date, s.loc)
	}
	return time.Time{}, errors.New("empty time")
}
