package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-clutch-metrics/internal/aggregator"
	"github.com/pable/go-clutch-metrics/internal/feb"
	"github.com/pable/go-clutch-metrics/internal/model"
)

const widget = `<div class="widget-keyfacts">
  <div class="fila" data-cuarto="4"><span class="tiempo">04:30</span><span class="accion">(LOCAL) GARCIA, J.: TIRO DE 2 ANOTADO</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">04:20</span><span class="accion">(VISITANTE) LOPEZ, M.: TIRO DE 3 ANOTADO</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">00:10</span><span class="accion">(LOCAL) RUIZ, A.: PÉRDIDA</span></div>
</div>`

type fakeFetcher struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
}

func newFakeFetcher(failing ...string) *fakeFetcher {
	f := &fakeFetcher{fail: make(map[string]bool), calls: make(map[string]int)}
	for _, id := range failing {
		f.fail[id] = true
	}
	return f
}

func (f *fakeFetcher) FetchKeyfacts(_ context.Context, gameID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[gameID]++
	if f.fail[gameID] {
		return "", errors.New("navigation timeout")
	}
	return widget, nil
}

type fakeSink struct {
	mu       sync.Mutex
	stored   map[string]*model.GameResult
	failures []model.FetchFailure
}

func newFakeSink(existing ...string) *fakeSink {
	s := &fakeSink{stored: make(map[string]*model.GameResult)}
	for _, id := range existing {
		s.stored[id] = &model.GameResult{}
	}
	return s
}

func (s *fakeSink) GameExists(gameID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stored[gameID]
	return ok, nil
}

func (s *fakeSink) StoreGameResult(res *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[res.Summary.GameID] = res
	return nil
}

func (s *fakeSink) InsertFetchFailure(f model.FetchFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
	return nil
}

func testOptions() Options {
	return Options{
		Workers: 3,
		Retry:   feb.RetryPolicy{MaxRetries: 2},
		Engine:  aggregator.DefaultConfig(),
	}
}

func TestRun_OneFailingGameDoesNotStopOthers(t *testing.T) {
	fetcher := newFakeFetcher("g2")
	sink := newFakeSink()

	report, err := Run(context.Background(), []string{"g1", "g2", "g3"}, fetcher, sink, testOptions())
	require.NoError(t, err)

	require.Len(t, report.Stored, 2)
	assert.Equal(t, "g1", report.Stored[0].GameID)
	assert.Equal(t, "g3", report.Stored[1].GameID)
	assert.Equal(t, report.RunID, report.Stored[0].RunID)
	assert.NotEmpty(t, report.Stored[0].StoredAt)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "g2", report.Failed[0].GameID)
	assert.Equal(t, 3, report.Failed[0].Attempts)
	assert.Contains(t, report.Failed[0].Error, "navigation timeout")
	assert.Equal(t, 3, fetcher.calls["g2"])
	assert.Equal(t, 1, fetcher.calls["g1"])

	require.Len(t, sink.failures, 1)
	assert.Equal(t, report.RunID, sink.failures[0].RunID)
	assert.Contains(t, sink.stored, "g1")
	assert.NotContains(t, sink.stored, "g2")
}

func TestRun_SkipsStoredUnlessForced(t *testing.T) {
	fetcher := newFakeFetcher()
	sink := newFakeSink("g1")

	report, err := Run(context.Background(), []string{"g1", "g2"}, fetcher, sink, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, report.Skipped)
	assert.Len(t, report.Stored, 1)
	assert.Zero(t, fetcher.calls["g1"])

	opts := testOptions()
	opts.Force = true
	report, err = Run(context.Background(), []string{"g1"}, fetcher, sink, opts)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Len(t, report.Stored, 1)
	assert.Equal(t, 1, fetcher.calls["g1"])
}

func TestRun_NoGames(t *testing.T) {
	report, err := Run(context.Background(), nil, newFakeFetcher(), newFakeSink(), testOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Empty(t, report.Stored)
}

func TestRun_InvalidEngineConfig(t *testing.T) {
	opts := testOptions()
	opts.Engine.ClutchMargin = -1
	_, err := Run(context.Background(), []string{"g1"}, newFakeFetcher(), newFakeSink(), opts)
	require.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, []string{"g1"}, newFakeFetcher(), newFakeSink(), testOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, report.Failed, 1)
}

func TestProcessHTML(t *testing.T) {
	res, err := ProcessHTML("g1", widget, aggregator.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "g1", res.Summary.GameID)
	assert.Equal(t, model.Matchup{"LOCAL", "VISITANTE"}, res.Summary.Teams)
	assert.Equal(t, [2]int{2, 3}, res.Summary.FinalScore)
	assert.Equal(t, 3, res.Summary.Parse.Rows)
}

func TestProcessHTML_UntimedAssistKeepsFeedOrder(t *testing.T) {
	const feed = `<div class="widget-keyfacts">
  <div class="fila" data-cuarto="4"><span class="accion">(LOCAL) RUIZ, A.: ASISTENCIA</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">05:00</span><span class="accion">(LOCAL) GARCIA, J.: TIRO DE 2 ANOTADO</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">04:00</span><span class="accion">(LOCAL) PEREZ, L.: ASISTENCIA</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">03:00</span><span class="accion">(LOCAL) SANZ, P.: TIRO DE 2 ANOTADO</span></div>
  <div class="fila" data-cuarto="4"><span class="tiempo">02:00</span><span class="accion">(VISITANTE) LOPEZ, M.: TIRO DE 2 FALLADO</span></div>
</div>`

	res, err := ProcessHTML("g1", feed, aggregator.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Parse.Untimed)
	assert.Equal(t, []model.AssistPair{
		{GameID: "g1", Team: "LOCAL", Passer: "PEREZ, L.", Scorer: "SANZ, P.", Count: 1},
		{GameID: "g1", Team: "LOCAL", Passer: "RUIZ, A.", Scorer: "GARCIA, J.", Count: 1},
	}, res.Assists)
}

func TestReadGameList(t *testing.T) {
	in := strings.Join([]string{
		"Fase,Jornada,IdPartido,IdEquipo,Local,Rival,Resultado",
		"Liga Regular,1,2301,77,1,Rival A,80-70",
		"Liga Regular,1,2301,78,0,Rival B,70-80",
		"",
		"Liga Regular,2,2315,77,0,Rival C,65-66",
	}, "\n")

	ids, err := ReadGameList(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"2301", "2315"}, ids)
}

func TestReadGameList_NoHeader(t *testing.T) {
	ids, err := ReadGameList(strings.NewReader("LR,3,999,1,1,X,1-0\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"999"}, ids)

	_, err = ReadGameList(strings.NewReader("only,two\n"))
	assert.Error(t, err)
}
