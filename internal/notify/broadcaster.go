package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rpsarena/rps-arena-go/internal/model"
	"github.com/rpsarena/rps-arena-go/internal/services/ranking"
	"github.com/rpsarena/rps-arena-go/internal/sse"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// Event names sent to clients
const (
	EventMatchUpdated       = "match-updated"
	EventRoundPending       = "round-pending"
	EventRoundResolved      = "round-resolved"
	EventMatchAbandoned     = "match-abandoned"
	EventOpenMatchesChanged = "open-matches-changed"
	EventRankingChanged     = "ranking-changed"
)

// DefaultBroadcastInterval is how often the global lists are re-published
// even without a triggering change
const DefaultBroadcastInterval = 5 * time.Second

// Broadcaster fans match and arena state out to SSE clients. Room events
// go to the match's hub; open-match and ranking snapshots go to the
// global hub, both on change and on a periodic schedule.
type Broadcaster struct {
	hubManager *sse.HubManager
	global     *sse.Hub
	storage    storage.Storage
	ranking    *ranking.Service
	logger     *slog.Logger

	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(
	hubManager *sse.HubManager,
	global *sse.Hub,
	storage storage.Storage,
	ranking *ranking.Service,
	interval time.Duration,
	logger *slog.Logger,
) *Broadcaster {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	return &Broadcaster{
		hubManager: hubManager,
		global:     global,
		storage:    storage,
		ranking:    ranking,
		interval:   interval,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

// Start begins the periodic global publishes
func (b *Broadcaster) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(b.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), b.interval)
			defer cancel()
			b.PublishOpenMatches(ctx)
			b.PublishRanking(ctx)
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	b.scheduler = scheduler
	b.logger.Info("periodic broadcast started", slog.Duration("interval", b.interval))
	return nil
}

// Stop halts the periodic publishes
func (b *Broadcaster) Stop() error {
	if b.scheduler == nil {
		return nil
	}
	return b.scheduler.Shutdown()
}

// usernamesFor resolves display names for a match's human participants
func (b *Broadcaster) usernamesFor(ctx context.Context, matches ...*model.Match) map[model.UserID]string {
	usernames := make(map[model.UserID]string)
	for _, match := range matches {
		for _, id := range []model.UserID{match.Player1, match.Player2.UserID, match.Winner.UserID} {
			if id == "" {
				continue
			}
			if _, ok := usernames[id]; ok {
				continue
			}
			user, err := b.storage.GetUser(ctx, id)
			if err != nil {
				b.logger.Warn("failed to resolve username",
					slog.String("user_id", string(id)),
					slog.String("error", err.Error()))
				continue
			}
			usernames[id] = user.Username
		}
	}
	return usernames
}

// sendToRoom serializes the payload and broadcasts it on the match's hub.
// No hub means no subscribers; the event is skipped.
func (b *Broadcaster) sendToRoom(matchID model.MatchID, event string, payload any) {
	hub := b.hubManager.GetHub(matchID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("failed to marshal event payload",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(event, string(data))
}

// sendGlobal serializes the payload and broadcasts it on the global hub
func (b *Broadcaster) sendGlobal(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("failed to marshal event payload",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}
	b.global.BroadcastEvent(event, string(data))
}

// MatchUpdated pushes the match's full view to its room
func (b *Broadcaster) MatchUpdated(ctx context.Context, match *model.Match, rounds []*model.Round) {
	view := NewMatchView(match, rounds, b.usernamesFor(ctx, match))
	b.sendToRoom(match.ID, EventMatchUpdated, view)
}

// RoundPending tells the room a choice is in and the round awaits the
// opponent
func (b *Broadcaster) RoundPending(match *model.Match, round *model.Round) {
	b.sendToRoom(match.ID, EventRoundPending, map[string]any{
		"number": round.Number,
	})
}

// RoundResolved pushes a resolved round's choices and winner to the room
func (b *Broadcaster) RoundResolved(match *model.Match, round *model.Round) {
	payload := map[string]any{
		"number": round.Number,
		"winner": string(round.Winner),
	}
	if round.Player1Choice != nil {
		payload["player1Choice"] = string(*round.Player1Choice)
	}
	if round.Player2Choice != nil {
		payload["player2Choice"] = string(*round.Player2Choice)
	}
	b.sendToRoom(match.ID, EventRoundResolved, payload)
}

// MatchAbandoned pushes the final view of an abandoned match to its room
func (b *Broadcaster) MatchAbandoned(ctx context.Context, match *model.Match, rounds []*model.Round) {
	view := NewMatchView(match, rounds, b.usernamesFor(ctx, match))
	b.sendToRoom(match.ID, EventMatchAbandoned, view)
}

// PublishOpenMatches broadcasts the joinable match list globally
func (b *Broadcaster) PublishOpenMatches(ctx context.Context) {
	matches, err := b.storage.ListWaitingMatches(ctx)
	if err != nil {
		b.logger.Error("failed to list open matches", slog.String("error", err.Error()))
		return
	}

	usernames := b.usernamesFor(ctx, matches...)
	views := make([]OpenMatchView, 0, len(matches))
	for _, match := range matches {
		views = append(views, NewOpenMatchView(match, usernames))
	}
	b.sendGlobal(EventOpenMatchesChanged, views)
}

// PublishRanking broadcasts the leaderboard globally
func (b *Broadcaster) PublishRanking(ctx context.Context) {
	entries, err := b.ranking.TopPlayers(ctx, ranking.DefaultLimit)
	if err != nil {
		b.logger.Error("failed to build ranking", slog.String("error", err.Error()))
		return
	}
	b.sendGlobal(EventRankingChanged, entries)
}
