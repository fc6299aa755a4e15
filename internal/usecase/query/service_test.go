package query

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockRetriever struct {
	docs       []domain.Document
	err        error
	calls      int
	lastVector []float32
	lastCount  int
	lastSource string
}

func (m *mockRetriever) Retrieve(
	_ context.Context, vector []float32, matchCount int, source string,
) ([]domain.Document, error) {
	m.calls++
	m.lastVector = vector
	m.lastCount = matchCount
	m.lastSource = source
	return m.docs, m.err
}

type mockGenerator struct {
	answer      string
	err         error
	calls       int
	lastQuery   string
	lastContext string
}

func (m *mockGenerator) Generate(_ context.Context, query, docContext string) (string, error) {
	m.calls++
	m.lastQuery = query
	m.lastContext = docContext
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func someDocs() []domain.Document {
	return []domain.Document{
		{Title: "A", Content: "x", Similarity: 0.9},
		{Title: "B", Content: "y", Similarity: 0.8},
	}
}

// --- Tests ---

func TestAsk_HappyPath(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}}
	ret := &mockRetriever{docs: someDocs()}
	gen := &mockGenerator{answer: "Use the gadgets endpoint."}

	svc := New(emb, ret, gen, zap.NewNop()).WithRetrieval(5, "ultravox_docs")

	result := svc.Ask(context.Background(), "How do I list gadgets?")

	if result.Text != "Use the gadgets endpoint." {
		t.Errorf("answer must pass through unmodified, got %q", result.Text)
	}
	if result.Outcome != domain.OutcomeAnswered {
		t.Errorf("outcome = %s, expected answered", result.Outcome)
	}
	if len(result.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(result.Sources))
	}
	if len(result.Degradations) != 0 {
		t.Errorf("expected no degradations, got %v", result.Degradations)
	}
	if ret.lastCount != 5 || ret.lastSource != "ultravox_docs" {
		t.Errorf("retriever called with count=%d source=%q", ret.lastCount, ret.lastSource)
	}
	if gen.lastQuery != "How do I list gadgets?" {
		t.Errorf("generator got query %q", gen.lastQuery)
	}
	wantContext := "Title: A\nContent: x\n\nTitle: B\nContent: y"
	if gen.lastContext != wantContext {
		t.Errorf("generator context:\ngot:  %q\nwant: %q", gen.lastContext, wantContext)
	}
}

func TestAsk_BlankQuestion_NoResultsWithoutCalls(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	ret := &mockRetriever{docs: someDocs()}
	gen := &mockGenerator{answer: "unused"}
	svc := New(emb, ret, gen, zap.NewNop())

	res := svc.Ask(context.Background(), "   ")

	if res.Text != domain.NoResultsMessage {
		t.Errorf("text = %q, want not-found message", res.Text)
	}
	if res.Outcome != domain.OutcomeNoResults {
		t.Errorf("outcome = %q, want %q", res.Outcome, domain.OutcomeNoResults)
	}
	if emb.calls != 0 || ret.calls != 0 || gen.calls != 0 {
		t.Errorf("pipeline ran for a blank question: emb=%d ret=%d gen=%d",
			emb.calls, ret.calls, gen.calls)
	}
	if len(res.Degradations) != 1 {
		t.Errorf("degradations = %v, want one validation note", res.Degradations)
	}
}

func TestAsk_NoResults_SkipsGeneration(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	ret := &mockRetriever{docs: nil}
	gen := &mockGenerator{answer: "should never be returned"}

	svc := New(emb, ret, gen, zap.NewNop())

	result := svc.Ask(context.Background(), "anything")

	if result.Text != domain.NoResultsMessage {
		t.Errorf("text = %q, expected the fixed not-found message", result.Text)
	}
	if result.Outcome != domain.OutcomeNoResults {
		t.Errorf("outcome = %s, expected no_results", result.Outcome)
	}
	if gen.calls != 0 {
		t.Errorf("generator must not be called, got %d calls", gen.calls)
	}
}

func TestAsk_EmbeddingFailure_ZeroVectorStillRetrieves(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("connection timeout")}
	ret := &mockRetriever{docs: someDocs()}
	gen := &mockGenerator{answer: "answer"}

	svc := New(emb, ret, gen, zap.NewNop()).WithDimensions(1536)

	result := svc.Ask(context.Background(), "q")

	if ret.calls != 1 {
		t.Fatalf("expected exactly one retrieve call, got %d", ret.calls)
	}
	if len(ret.lastVector) != 1536 {
		t.Fatalf("expected zero vector of 1536 dims, got %d", len(ret.lastVector))
	}
	for i, f := range ret.lastVector {
		if f != 0 {
			t.Fatalf("expected zero at index %d, got %f", i, f)
		}
	}
	if result.Outcome != domain.OutcomeDegraded {
		t.Errorf("outcome = %s, expected degraded", result.Outcome)
	}
	if len(result.Degradations) != 1 {
		t.Fatalf("expected 1 degradation note, got %v", result.Degradations)
	}
	if result.Text != "answer" {
		t.Errorf("text = %q, expected the generated answer", result.Text)
	}
}

func TestAsk_RetrievalFailure_RendersNotFound(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	ret := &mockRetriever{err: errors.New("store unavailable")}
	gen := &mockGenerator{}

	svc := New(emb, ret, gen, zap.NewNop())

	result := svc.Ask(context.Background(), "q")

	if result.Text != domain.NoResultsMessage {
		t.Errorf("text = %q, expected the fixed not-found message", result.Text)
	}
	if result.Outcome != domain.OutcomeNoResults {
		t.Errorf("outcome = %s, expected no_results", result.Outcome)
	}
	if gen.calls != 0 {
		t.Errorf("generator must not be called after failed retrieval")
	}
	// The structured result still records the real cause.
	if len(result.Degradations) != 1 {
		t.Fatalf("expected a degradation note, got %v", result.Degradations)
	}
}

func TestAsk_GenerationFailure_RenderedAsErrorText(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	ret := &mockRetriever{docs: someDocs()}
	gen := &mockGenerator{err: errors.New("rate limited")}

	svc := New(emb, ret, gen, zap.NewNop())

	result := svc.Ask(context.Background(), "q")

	if result.Text != "Error: rate limited" {
		t.Errorf("text = %q, expected %q", result.Text, "Error: rate limited")
	}
	if result.Outcome != domain.OutcomeFailed {
		t.Errorf("outcome = %s, expected failed", result.Outcome)
	}
}

func TestAnswer_NeverEmpty(t *testing.T) {
	tests := []struct {
		name string
		emb  *mockEmbedder
		ret  *mockRetriever
		gen  *mockGenerator
	}{
		{"all succeed", &mockEmbedder{vec: []float32{1}}, &mockRetriever{docs: someDocs()}, &mockGenerator{answer: "ok"}},
		{"embed fails", &mockEmbedder{err: errors.New("x")}, &mockRetriever{docs: someDocs()}, &mockGenerator{answer: "ok"}},
		{"retrieve fails", &mockEmbedder{vec: []float32{1}}, &mockRetriever{err: errors.New("x")}, &mockGenerator{}},
		{"generate fails", &mockEmbedder{vec: []float32{1}}, &mockRetriever{docs: someDocs()}, &mockGenerator{err: errors.New("x")}},
		{"everything fails", &mockEmbedder{err: errors.New("x")}, &mockRetriever{err: errors.New("x")}, &mockGenerator{err: errors.New("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.emb, tt.ret, tt.gen, zap.NewNop())
			if got := svc.Answer(context.Background(), "some question"); got == "" {
				t.Error("Answer returned an empty string")
			}
		})
	}
}

func TestAsk_UsesContextLogger(t *testing.T) {
	// Just verify the pipeline runs with a logger stored in the context.
	emb := &mockEmbedder{vec: []float32{1}}
	ret := &mockRetriever{docs: someDocs()}
	gen := &mockGenerator{answer: "ok"}
	svc := New(emb, ret, gen, nil)

	ctx := context.Background()
	if got := svc.Answer(ctx, "q"); got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
}
