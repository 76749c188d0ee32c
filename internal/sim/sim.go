// Package sim plays complete games between bots on the session engine.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"wolfbot/internal/app"
	"wolfbot/internal/bot"
	"wolfbot/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options control a simulation run.
type Options struct {
	Players  int
	Games    int
	Seed     int64
	Level    bot.BotLevel
	Parallel int
	// Mode picks the role tables every game deals from.
	Mode domain.Mode

	// Day and Night bound each phase; bots normally finish a phase well before.
	Day   time.Duration
	Night time.Duration
	// ActEvery is how often the bots are asked to act.
	ActEvery time.Duration
	// Timeout bounds a single game.
	Timeout time.Duration

	// OnEvent, when set, receives every event of every game. Calls for
	// different games may be concurrent.
	OnEvent func(game int, ev app.Event)
}

// DefaultOptions returns a quick eight player run.
func DefaultOptions() Options {
	return Options{
		Players:  8,
		Games:    10,
		Seed:     1,
		Level:    bot.BotLevelSmart,
		Parallel: 4,
		Mode:     domain.ModeDefault,
		Day:      200 * time.Millisecond,
		Night:    200 * time.Millisecond,
		ActEvery: 5 * time.Millisecond,
		Timeout:  30 * time.Second,
	}
}

// Result summarizes one finished game.
type Result struct {
	Game      int
	SessionID string
	Outcome   domain.Outcome
	Days      int
	Nights    int
	Deaths    int
	Mode      domain.Mode
	Fallback  bool
	Roles     map[domain.PlayerID]domain.RoleName
}

// Run plays opts.Games games, at most opts.Parallel at once, and returns
// their results in game order.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Games <= 0 {
		return nil, errors.New("sim: at least one game is required")
	}
	results := make([]Result, opts.Games)

	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i := 0; i < opts.Games; i++ {
		i := i
		g.Go(func() error {
			r, err := Play(ctx, opts, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Play runs game number game to completion.
func Play(ctx context.Context, opts Options, game int) (Result, error) {
	seed := opts.Seed + int64(game)*7919
	rng := rand.New(rand.NewSource(seed))
	svc := app.NewService(rng)
	s := domain.NewSession(uuid.NewString())
	if opts.Mode != "" {
		s.Mode = opts.Mode
	}

	agents := make(map[domain.PlayerID]*bot.Agent, opts.Players)
	for i := 0; i < opts.Players; i++ {
		name := fmt.Sprintf("bot%02d", i+1)
		id, _, err := svc.Join(s, name)
		if err != nil {
			return Result{}, err
		}
		brain, err := bot.NewBrain(opts.Level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return Result{}, err
		}
		agents[id] = &bot.Agent{ID: id, Name: name, Brain: brain}
	}

	result := Result{Game: game, SessionID: s.ID}
	var mu sync.Mutex
	var failure error

	sink := func(events []app.Event) {
		for _, agent := range agents {
			agent.Observe(events)
		}
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case app.GameStartedPayload:
				result.Mode = p.Mode
				result.Fallback = p.Fallback
			case app.Death:
				result.Deaths++
			case app.GameEndedPayload:
				result.Outcome = p.Outcome
				result.Roles = p.Roles
			}
			if opts.OnEvent != nil {
				opts.OnEvent(game, ev)
			}
		}
	}

	sched := app.NewScheduler(svc, app.NewPhaseTimer(), app.Durations{Day: opts.Day, Night: opts.Night})
	engine, err := app.NewEngine(app.EngineConfig{
		Scheduler:    sched,
		Session:      s,
		Sink:         sink,
		TickInterval: opts.ActEvery,
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			failure = errors.Join(failure, err)
		},
	})
	if err != nil {
		sched.Stop()
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		if err := engine.Submit(ctx, sched.Begin); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		ticker := time.NewTicker(opts.ActEvery)
		defer ticker.Stop()
		for {
			select {
			case <-engine.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			err := engine.Submit(ctx, func(s *domain.Session) ([]app.Event, error) {
				return actAll(svc, s, agents)
			})
			if errors.Is(err, app.ErrEngineStopped) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	mu.Lock()
	defer mu.Unlock()
	if failure != nil {
		return Result{}, failure
	}
	result.Days, result.Nights = s.DayCount, s.NightCount
	return result, nil
}

// actAll lets every seated bot act once, in seating order.
func actAll(svc *app.Service, s *domain.Session, agents map[domain.PlayerID]*bot.Agent) ([]app.Event, error) {
	var events []app.Event
	for _, id := range s.Order {
		evs, err := agents[id].Act(svc, s)
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
	}
	return events, nil
}

// Summary aggregates results by winning faction.
type Summary struct {
	Games     int
	Wins      map[domain.Faction]int
	AvgDays   float64
	AvgDeaths float64
	Fallbacks int
}

func Summarize(results []Result) Summary {
	sum := Summary{Games: len(results), Wins: make(map[domain.Faction]int)}
	if len(results) == 0 {
		return sum
	}
	days, deaths := 0, 0
	for _, r := range results {
		sum.Wins[r.Outcome.Faction]++
		days += r.Days
		deaths += r.Deaths
		if r.Fallback {
			sum.Fallbacks++
		}
	}
	sum.AvgDays = float64(days) / float64(len(results))
	sum.AvgDeaths = float64(deaths) / float64(len(results))
	return sum
}
