package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/courtline/courtline/internal/domain/boxscore"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/cache"
)

// TeamCoverage reports box-score completeness for one team's Final games.
type TeamCoverage struct {
	TeamID          int64  `json:"teamId"`
	Abbreviation    string `json:"abbreviation"`
	FinalGames      int    `json:"finalGames"`
	WithTeamStats   int    `json:"withTeamStats"`
	WithPlayerStats int    `json:"withPlayerStats"`
	Missing         int    `json:"missing"`
	CoveragePct     int    `json:"coveragePct"`
}

// LeagueCoverage is the league-wide rollup. Per-team sums count each game
// once per participant, so game-level totals are the sums halved.
type LeagueCoverage struct {
	FinalGames      int `json:"finalGames"`
	WithTeamStats   int `json:"withTeamStats"`
	WithPlayerStats int `json:"withPlayerStats"`
	Missing         int `json:"missing"`
	CoveragePct     int `json:"coveragePct"`
}

// CoverageReport is the full response for a coverage query.
type CoverageReport struct {
	Source string          `json:"source"`
	Cutoff time.Time       `json:"cutoff"`
	Teams  []TeamCoverage  `json:"teams"`
	League *LeagueCoverage `json:"league,omitempty"`
}

// TeamStanding is one team's record plus scoring ranks.
type TeamStanding struct {
	TeamID           int64   `json:"teamId"`
	Abbreviation     string  `json:"abbreviation"`
	Name             string  `json:"name"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinPct           float64 `json:"winPct"`
	AvgPointsFor     float64 `json:"avgPointsFor"`
	AvgPointsAgainst float64 `json:"avgPointsAgainst"`
	OffensiveRank    int     `json:"offensiveRank"`
	DefensiveRank    int     `json:"defensiveRank"`
}

// CoverageService computes box-score coverage and win/loss standings over
// Final games.
type CoverageService struct {
	gameRepo     game.Repository
	teamRepo     team.Repository
	boxscoreRepo boxscore.Repository
	// authoritativeSource is the provider whose team-stat rows count toward
	// coverage.
	authoritativeSource string
	fanout              int
	cache               *cache.Store
}

func NewCoverageService(gameRepo game.Repository, teamRepo team.Repository, boxscoreRepo boxscore.Repository, authoritativeSource string, fanout int, store *cache.Store) *CoverageService {
	if fanout < 1 {
		fanout = 8
	}

	return &CoverageService{
		gameRepo:            gameRepo,
		teamRepo:            teamRepo,
		boxscoreRepo:        boxscoreRepo,
		authoritativeSource: authoritativeSource,
		fanout:              fanout,
		cache:               store,
	}
}

// TeamReport computes coverage for a single team through the cutoff.
func (s *CoverageService) TeamReport(ctx context.Context, teamID int64, cutoff time.Time) (CoverageReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoverageService.TeamReport")
	defer span.End()

	if teamID <= 0 {
		return CoverageReport{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return CoverageReport{}, fmt.Errorf("get team: %w", err)
	}
	if !found {
		return CoverageReport{}, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
	}

	finals, err := s.gameRepo.ListFinals(ctx, cutoff)
	if err != nil {
		return CoverageReport{}, fmt.Errorf("list finals: %w", err)
	}

	coverage, err := s.coverTeam(ctx, t, gamesInvolving(finals, teamID))
	if err != nil {
		return CoverageReport{}, err
	}

	return CoverageReport{
		Source: s.authoritativeSource,
		Cutoff: cutoff,
		Teams:  []TeamCoverage{coverage},
	}, nil
}

// LeagueReport computes coverage for every team plus the league rollup,
// fanning the per-team work out across a bounded pool. Reports are cached
// per cutoff.
func (s *CoverageService) LeagueReport(ctx context.Context, cutoff time.Time) (CoverageReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoverageService.LeagueReport")
	defer span.End()

	if s.cache == nil {
		return s.leagueReport(ctx, cutoff)
	}

	key := "coverage:league:" + cutoff.UTC().Format(time.RFC3339)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.leagueReport(ctx, cutoff)
	})
	if err != nil {
		return CoverageReport{}, err
	}

	report, ok := value.(CoverageReport)
	if !ok {
		return CoverageReport{}, fmt.Errorf("unexpected cached coverage type %T", value)
	}
	return report, nil
}

func (s *CoverageService) leagueReport(ctx context.Context, cutoff time.Time) (CoverageReport, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return CoverageReport{}, fmt.Errorf("list teams: %w", err)
	}
	finals, err := s.gameRepo.ListFinals(ctx, cutoff)
	if err != nil {
		return CoverageReport{}, fmt.Errorf("list finals: %w", err)
	}

	results := make([]TeamCoverage, len(teams))
	var mu sync.Mutex

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.fanout)
	for i, t := range teams {
		i, t := i, t
		p.Go(func(ctx context.Context) error {
			coverage, coverErr := s.coverTeam(ctx, t, gamesInvolving(finals, t.ID))
			if coverErr != nil {
				return coverErr
			}
			mu.Lock()
			results[i] = coverage
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return CoverageReport{}, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Abbreviation < results[j].Abbreviation
	})

	var sums LeagueCoverage
	for _, r := range results {
		sums.FinalGames += r.FinalGames
		sums.WithTeamStats += r.WithTeamStats
		sums.WithPlayerStats += r.WithPlayerStats
		sums.Missing += r.Missing
	}
	// Every game has exactly two participants; halve the per-team sums to
	// recover game counts.
	league := LeagueCoverage{
		FinalGames:      sums.FinalGames / 2,
		WithTeamStats:   sums.WithTeamStats / 2,
		WithPlayerStats: sums.WithPlayerStats / 2,
		Missing:         sums.Missing / 2,
	}
	league.CoveragePct = coveragePct(league.WithTeamStats, league.FinalGames)

	return CoverageReport{
		Source: s.authoritativeSource,
		Cutoff: cutoff,
		Teams:  results,
		League: &league,
	}, nil
}

func (s *CoverageService) coverTeam(ctx context.Context, t team.Team, finals []game.Game) (TeamCoverage, error) {
	out := TeamCoverage{
		TeamID:       t.ID,
		Abbreviation: t.Abbreviation,
		FinalGames:   len(finals),
	}
	if len(finals) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(finals))
	for _, g := range finals {
		ids = append(ids, g.ID)
	}

	withTeam, err := s.boxscoreRepo.GameIDsWithTeamStats(ctx, ids, s.authoritativeSource)
	if err != nil {
		return TeamCoverage{}, fmt.Errorf("games with team stats: %w", err)
	}
	withPlayer, err := s.boxscoreRepo.GameIDsWithPlayerStats(ctx, ids)
	if err != nil {
		return TeamCoverage{}, fmt.Errorf("games with player stats: %w", err)
	}

	for _, id := range ids {
		if withTeam[id] {
			out.WithTeamStats++
		}
		if withPlayer[id] {
			out.WithPlayerStats++
		}
	}
	out.Missing = out.FinalGames - out.WithTeamStats
	out.CoveragePct = coveragePct(out.WithTeamStats, out.FinalGames)

	return out, nil
}

// Standings derives win/loss records and dense scoring ranks from Final
// games with scores. Equal scores credit neither side. Results are cached
// per cutoff.
func (s *CoverageService) Standings(ctx context.Context, cutoff time.Time) ([]TeamStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CoverageService.Standings")
	defer span.End()

	if s.cache == nil {
		return s.standings(ctx, cutoff)
	}

	key := "standings:" + cutoff.UTC().Format(time.RFC3339)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.standings(ctx, cutoff)
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]TeamStanding)
	if !ok {
		return nil, fmt.Errorf("unexpected cached standings type %T", value)
	}
	return rows, nil
}

func (s *CoverageService) standings(ctx context.Context, cutoff time.Time) ([]TeamStanding, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	finals, err := s.gameRepo.ListFinals(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list finals: %w", err)
	}

	type tally struct {
		wins, losses             int
		games                    int
		pointsFor, pointsAgainst int
	}
	tallies := make(map[int64]*tally, len(teams))
	for _, t := range teams {
		tallies[t.ID] = &tally{}
	}

	for _, g := range finals {
		if !g.HasScores() {
			continue
		}
		home, away := tallies[g.HomeTeamID], tallies[g.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		home.games++
		away.games++
		home.pointsFor += *g.HomeScore
		home.pointsAgainst += *g.AwayScore
		away.pointsFor += *g.AwayScore
		away.pointsAgainst += *g.HomeScore

		switch winner := g.Winner(); winner {
		case g.HomeTeamID:
			home.wins++
			away.losses++
		case g.AwayTeamID:
			away.wins++
			home.losses++
		}
	}

	standings := make([]TeamStanding, 0, len(teams))
	for _, t := range teams {
		ty := tallies[t.ID]
		row := TeamStanding{
			TeamID:       t.ID,
			Abbreviation: t.Abbreviation,
			Name:         t.Name,
			Wins:         ty.wins,
			Losses:       ty.losses,
		}
		if decided := ty.wins + ty.losses; decided > 0 {
			row.WinPct = math.Round(float64(ty.wins)/float64(decided)*1000) / 1000
		}
		if ty.games > 0 {
			row.AvgPointsFor = math.Round(float64(ty.pointsFor)/float64(ty.games)*10) / 10
			row.AvgPointsAgainst = math.Round(float64(ty.pointsAgainst)/float64(ty.games)*10) / 10
		}
		standings = append(standings, row)
	}

	assignDenseRank(standings,
		func(a, b TeamStanding) bool { return a.AvgPointsFor > b.AvgPointsFor },
		func(row *TeamStanding, rank int) { row.OffensiveRank = rank },
		func(a, b TeamStanding) bool { return a.AvgPointsFor == b.AvgPointsFor },
	)
	assignDenseRank(standings,
		func(a, b TeamStanding) bool { return a.AvgPointsAgainst < b.AvgPointsAgainst },
		func(row *TeamStanding, rank int) { row.DefensiveRank = rank },
		func(a, b TeamStanding) bool { return a.AvgPointsAgainst == b.AvgPointsAgainst },
	)

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].WinPct != standings[j].WinPct {
			return standings[i].WinPct > standings[j].WinPct
		}
		return standings[i].Abbreviation < standings[j].Abbreviation
	})

	return standings, nil
}

// assignDenseRank orders rows by the metric (ties broken alphabetically by
// abbreviation for determinism) and assigns dense ranks: tied metric values
// share a rank and the next distinct value takes rank+1.
func assignDenseRank(rows []TeamStanding, better func(a, b TeamStanding) bool, assign func(*TeamStanding, int), equal func(a, b TeamStanding) bool) {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		a, b := rows[order[x]], rows[order[y]]
		if equal(a, b) {
			return a.Abbreviation < b.Abbreviation
		}
		return better(a, b)
	})

	rank := 0
	for pos, idx := range order {
		if pos == 0 || !equal(rows[idx], rows[order[pos-1]]) {
			rank++
		}
		assign(&rows[idx], rank)
	}
}

func gamesInvolving(games []game.Game, teamID int64) []game.Game {
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if g.HomeTeamID == teamID || g.AwayTeamID == teamID {
			out = append(out, g)
		}
	}
	return out
}

func coveragePct(with, final int) int {
	if final == 0 {
		return 0
	}
	return int(math.Round(float64(with) / float64(final) * 100))
}
