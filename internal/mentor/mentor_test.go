package mentor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/config"
	"github.com/qpath/qpath/internal/llm"
	"github.com/qpath/qpath/internal/store"
)

// stubAdvisor answers every call with the configured error or status.
type stubAdvisor struct {
	source string
	err    error
	status string
	health bool

	mu    sync.Mutex
	calls int
}

func (s *stubAdvisor) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *stubAdvisor) statusOr() string {
	if s.status == "" {
		return StatusSuccess
	}
	return s.status
}

func (s *stubAdvisor) Guidance(_ context.Context, in api.GuidanceRequest) (*api.Guidance, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return &api.Guidance{Response: s.source + ": " + in.Query, Status: s.statusOr(), Query: in.Query}, nil
}

func (s *stubAdvisor) QuickTips(_ context.Context, area string) (*api.QuickTips, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return &api.QuickTips{CareerArea: area, Tips: s.source, Status: s.statusOr()}, nil
}

func (s *stubAdvisor) Recommendations(_ context.Context, in api.RecommendationRequest) (*api.Recommendations, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return &api.Recommendations{Recommendations: map[string]any{"from": s.source}, Status: s.statusOr(), CareerArea: in.CareerArea}, nil
}

func (s *stubAdvisor) LearningPath(_ context.Context, in api.LearningPathRequest) (*api.LearningPath, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return &api.LearningPath{Analysis: s.source, Status: s.statusOr(), TargetRole: in.TargetRole}, nil
}

func (s *stubAdvisor) Health(context.Context) (*api.MentorHealth, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return &api.MentorHealth{Service: ServiceName, Available: s.health, Message: s.source}, nil
}

func (s *stubAdvisor) Source() string { return s.source }

// memoryJournal is an in-memory MentorEventRepo.
type memoryJournal struct {
	mu     sync.Mutex
	events []store.MentorEventData
	err    error
}

func (m *memoryJournal) Append(_ context.Context, data store.MentorEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, data)
	return nil
}

func (m *memoryJournal) Query(context.Context, store.QueryOpts) ([]store.MentorEvent, error) {
	return nil, nil
}

func (m *memoryJournal) Get(context.Context, int) (*store.MentorEvent, error) {
	return nil, nil
}

func TestLocalGuidancePrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("  Comece por criptografia pós-quântica.  "))
	local := NewLocal(mock)

	g, err := local.Guidance(context.Background(), api.GuidanceRequest{
		Query:       "Como migrar para segurança?",
		UserProfile: map[string]any{"career_area": "redes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Comece por criptografia pós-quântica.", g.Response)
	assert.Equal(t, StatusSuccess, g.Status)
	assert.Equal(t, "Como migrar para segurança?", g.Query)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "Q-Mentor")
	prompt := calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Pergunta do usuário: Como migrar para segurança?")
	assert.Contains(t, prompt, "- Área de interesse: redes")
	assert.Contains(t, prompt, "- Objetivos: Não informado")
	assert.Contains(t, prompt, "300 palavras")
}

func TestLocalGuidanceWithoutProfile(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("ok"))
	_, err := NewLocal(mock).Guidance(context.Background(), api.GuidanceRequest{Query: "oi"})
	require.NoError(t, err)
	assert.NotContains(t, mock.Calls()[0].Messages[0].Content, "Perfil do usuário")
}

func TestLocalQuickTips(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("1. a\n2. b\n3. c"))
	tips, err := NewLocal(mock).QuickTips(context.Background(), "cibersegurança")
	require.NoError(t, err)
	assert.Equal(t, "cibersegurança", tips.CareerArea)
	assert.Equal(t, "1. a\n2. b\n3. c", tips.Tips)
	assert.Contains(t, mock.Calls()[0].Messages[0].Content, "Dê 3 dicas rápidas e práticas para alguém na área de cibersegurança")
}

func TestLocalRecommendationsParsed(t *testing.T) {
	reply := "```json\n" + `{"technologies":["CRYSTALS-Kyber"],"skills":["PKI"],"courses":["PQC 101"],"projects":["VPN híbrida"],"roadmap":["mês 1"]}` + "\n```"
	mock := llm.NewMockProvider(llm.MockText(reply))

	r, err := NewLocal(mock).Recommendations(context.Background(), api.RecommendationRequest{CareerArea: "redes"})
	require.NoError(t, err)
	assert.Equal(t, "beginner", r.ExperienceLevel)
	assert.Equal(t, []any{"CRYSTALS-Kyber"}, r.Recommendations["technologies"])
	assert.NotContains(t, r.Recommendations, "parsed")
	assert.Contains(t, mock.Calls()[0].Messages[0].Content, "Nível: beginner")
}

func TestLocalRecommendationsFallbackToRaw(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "Estude Kyber e Dilithium."},
		{"wrong shape", `{"technologies":"Kyber"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockText(tt.reply))
			r, err := NewLocal(mock).Recommendations(context.Background(), api.RecommendationRequest{CareerArea: "dev", ExperienceLevel: "advanced"})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"raw_response": tt.reply, "parsed": false}, r.Recommendations)
			assert.Equal(t, "advanced", r.ExperienceLevel)
		})
	}
}

func TestLocalLearningPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Plano"))
	p, err := NewLocal(mock).LearningPath(context.Background(), api.LearningPathRequest{TargetRole: "Arquiteto PQC"})
	require.NoError(t, err)
	assert.Equal(t, "Plano", p.Analysis)
	assert.Equal(t, []string{}, p.CurrentSkills)

	mock.AddResponse(llm.MockText("Plano 2"))
	_, err = NewLocal(mock).LearningPath(context.Background(), api.LearningPathRequest{
		CurrentSkills: []string{"Python", "Linux"},
		TargetRole:    "SecOps",
	})
	require.NoError(t, err)
	assert.Contains(t, mock.Calls()[1].Messages[0].Content, "Habilidades atuais: Python, Linux")
}

func TestLocalProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	_, err := NewLocal(mock).Guidance(context.Background(), api.GuidanceRequest{Query: "x"})
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestLocalHealth(t *testing.T) {
	h, err := NewLocal(llm.NewMockProvider()).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Available)
	assert.Equal(t, StatusOperational, h.Status)
	assert.Contains(t, h.Message, "mock")
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name          string
		primary       *stubAdvisor
		wantSource    string
		wantSecondary bool
		wantErr       bool
	}{
		{
			name:       "primary answers",
			primary:    &stubAdvisor{source: "remote"},
			wantSource: "remote",
		},
		{
			name:          "network error",
			primary:       &stubAdvisor{source: "remote", err: &api.NetworkError{Method: "POST", Path: "/qmentor/guidance", Err: errors.New("refused")}},
			wantSource:    "local",
			wantSecondary: true,
		},
		{
			name:          "server error",
			primary:       &stubAdvisor{source: "remote", err: &api.APIError{StatusCode: http.StatusInternalServerError}},
			wantSource:    "local",
			wantSecondary: true,
		},
		{
			name:          "error status",
			primary:       &stubAdvisor{source: "remote", status: StatusError},
			wantSource:    "local",
			wantSecondary: true,
		},
		{
			name:    "client error propagates",
			primary: &stubAdvisor{source: "remote", err: &api.APIError{StatusCode: http.StatusUnprocessableEntity}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secondary := &stubAdvisor{source: "local"}
			f := WithFallback(tt.primary, secondary, nil)

			g, err := f.Guidance(context.Background(), api.GuidanceRequest{Query: "q"})
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, secondary.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource+": q", g.Response)
			assert.Equal(t, tt.wantSecondary, secondary.calls == 1)
		})
	}
}

func TestFallbackBothFail(t *testing.T) {
	primaryErr := &api.NetworkError{Method: "GET", Path: "/qmentor/quick-tips/x", Err: errors.New("down")}
	secondaryErr := &llm.ErrProviderUnavailable{}
	f := WithFallback(&stubAdvisor{source: "remote", err: primaryErr}, &stubAdvisor{source: "m", err: secondaryErr}, nil)

	_, err := f.QuickTips(context.Background(), "x")
	var netErr *api.NetworkError
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &netErr)
	assert.ErrorAs(t, err, &unavail)
}

func TestFallbackKeepsErrorStatusWhenSecondaryFails(t *testing.T) {
	f := WithFallback(
		&stubAdvisor{source: "remote", status: StatusError},
		&stubAdvisor{source: "m", err: errors.New("no key")},
		nil,
	)
	p, err := f.LearningPath(context.Background(), api.LearningPathRequest{TargetRole: "x"})
	require.NoError(t, err)
	assert.Equal(t, StatusError, p.Status)
	assert.Equal(t, "remote", p.Analysis)
}

func TestFallbackHealthUnavailablePrimary(t *testing.T) {
	f := WithFallback(&stubAdvisor{source: "remote", health: false}, &stubAdvisor{source: "local", health: true}, nil)
	h, err := f.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Available)
	assert.Equal(t, "local", h.Message)
	assert.Equal(t, "remote+local", f.Source())
}

func TestJournalRecordsCalls(t *testing.T) {
	repo := &memoryJournal{}
	j := WithJournal(&stubAdvisor{source: "remote", health: true}, repo, nil)
	ctx := context.Background()

	_, err := j.Guidance(ctx, api.GuidanceRequest{Query: "q"})
	require.NoError(t, err)
	_, err = j.Recommendations(ctx, api.RecommendationRequest{CareerArea: "redes", ExperienceLevel: "beginner"})
	require.NoError(t, err)
	_, err = j.LearningPath(ctx, api.LearningPathRequest{CurrentSkills: []string{"Go"}, TargetRole: "SRE"})
	require.NoError(t, err)
	_, err = j.Health(ctx)
	require.NoError(t, err)

	require.Len(t, repo.events, 4)
	assert.Equal(t, store.MentorEventData{Kind: KindGuidance, Source: "remote", Success: true, Prompt: "q", Answer: "remote: q"},
		withoutLatency(repo.events[0]))
	assert.Equal(t, "redes (beginner)", repo.events[1].Prompt)
	assert.JSONEq(t, `{"from":"remote"}`, repo.events[1].Answer)
	assert.Equal(t, "Go → SRE", repo.events[2].Prompt)
	assert.Equal(t, KindHealth, repo.events[3].Kind)
	assert.True(t, repo.events[3].Success)
}

func withoutLatency(ev store.MentorEventData) store.MentorEventData {
	ev.LatencyMs = 0
	return ev
}

func TestJournalRecordsFailures(t *testing.T) {
	repo := &memoryJournal{}
	j := WithJournal(&stubAdvisor{source: "m", err: errors.New("boom")}, repo, nil)

	_, err := j.QuickTips(context.Background(), "dev")
	require.Error(t, err)
	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Success)
	assert.Equal(t, "boom", repo.events[0].ErrorMessage)
	assert.Equal(t, KindTips, repo.events[0].Kind)

	j = WithJournal(&stubAdvisor{source: "remote", status: StatusError}, repo, nil)
	_, err = j.QuickTips(context.Background(), "dev")
	require.NoError(t, err)
	assert.False(t, repo.events[1].Success)
	assert.Equal(t, "remote", repo.events[1].ErrorMessage)
}

func TestJournalAppendFailureIgnored(t *testing.T) {
	j := WithJournal(&stubAdvisor{source: "remote"}, &memoryJournal{err: errors.New("disk full")}, nil)
	g, err := j.Guidance(context.Background(), api.GuidanceRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "remote: q", g.Response)
}

func TestJournalSQLiteStore(t *testing.T) {
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := llm.NewMockProvider(llm.MockText("dica"))
	j := WithJournal(NewLocal(mock), s.MentorEventRepo(), nil)
	_, err = j.QuickTips(context.Background(), "redes")
	require.NoError(t, err)

	events, err := s.MentorEventRepo().Query(context.Background(), store.QueryOpts{Kind: KindTips})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "mock", events[0].Source)
	assert.Equal(t, "dica", events[0].Answer)
}

func newMentorServer(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := api.New(context.Background(), api.Options{BaseURL: srv.URL + "/api/v1"})
	require.NoError(t, err)
	return client
}

func TestNewAutoFallsBackToLocal(t *testing.T) {
	client := newMentorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mock := llm.NewMockProvider(llm.MockText("resposta local"))
	journal := &memoryJournal{}

	a, err := New(config.MentorConfig{Mode: "auto"}, client, mock, journal, nil)
	require.NoError(t, err)

	g, err := a.Guidance(context.Background(), api.GuidanceRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "resposta local", g.Response)

	require.Len(t, journal.events, 2)
	assert.Equal(t, "remote", journal.events[0].Source)
	assert.False(t, journal.events[0].Success)
	assert.Equal(t, "mock", journal.events[1].Source)
	assert.True(t, journal.events[1].Success)
}

func TestNewRemoteUsesBackend(t *testing.T) {
	client := newMentorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/qmentor/quick-tips/redes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.QuickTips{CareerArea: "redes", Tips: "remoto", Status: StatusSuccess})
	})

	a, err := New(config.MentorConfig{Mode: "remote"}, client, nil, nil, nil)
	require.NoError(t, err)
	tips, err := a.QuickTips(context.Background(), "redes")
	require.NoError(t, err)
	assert.Equal(t, "remoto", tips.Tips)
}

func TestNewModes(t *testing.T) {
	mock := llm.NewMockProvider()

	_, err := New(config.MentorConfig{Mode: "local"}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New(config.MentorConfig{Mode: "remote"}, nil, mock, nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	a, err := New(config.MentorConfig{Mode: "auto"}, nil, mock, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", a.Source())

	_, err = New(config.MentorConfig{Mode: "psychic"}, nil, mock, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "psychic"))
}
