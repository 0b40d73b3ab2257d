package bot

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/siterag/internal/storage"
)

type fakeEmbedder struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return f.vectors, f.err
}

type fakeRetriever struct {
	hits []storage.ScoredChunk
	err  error

	gotVector []float32
	gotK      int
}

func (f *fakeRetriever) Query(ctx context.Context, vector []float32, k int) ([]storage.ScoredChunk, error) {
	f.gotVector = vector
	f.gotK = k
	return f.hits, f.err
}

type fakeCompleter struct {
	answer string
	err    error

	gotQuestion string
	gotContext  string
}

func (f *fakeCompleter) Complete(ctx context.Context, question, contextBlock string) (string, error) {
	f.gotQuestion = question
	f.gotContext = contextBlock
	return f.answer, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func queryVector() [][]float32 {
	return [][]float32{{0.1, 0.2, 0.3}}
}

func TestAnswer_JoinsRetrievedChunks(t *testing.T) {
	retriever := &fakeRetriever{hits: []storage.ScoredChunk{
		{Chunk: "shipping takes two days", Metadata: storage.Metadata{Source: "site.test_shipping.txt"}, Score: 0.9},
		{Chunk: "returns are free within 30 days", Metadata: storage.Metadata{Source: "site.test_returns.txt"}, Score: 0.8},
	}}
	completer := &fakeCompleter{answer: "Shipping takes two days."}
	b := New(&fakeEmbedder{vectors: queryVector()}, retriever, completer, 3, quietLogger())

	answer, err := b.Answer(context.Background(), "how long does shipping take?")
	require.NoError(t, err)

	assert.Equal(t, "Shipping takes two days.", answer.Text)
	assert.Equal(t, "how long does shipping take?", completer.gotQuestion)
	assert.Equal(t, "shipping takes two days\n\nreturns are free within 30 days", completer.gotContext)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, retriever.gotVector)
	assert.Equal(t, 3, retriever.gotK)
}

func TestAnswer_SourcesReconstructedAndDeduplicated(t *testing.T) {
	retriever := &fakeRetriever{hits: []storage.ScoredChunk{
		{Chunk: "a", Metadata: storage.Metadata{Source: "site.test_docs.txt", ChunkIndex: 0}},
		{Chunk: "b", Metadata: storage.Metadata{Source: "site.test_docs.txt", ChunkIndex: 1}},
		{Chunk: "c", Metadata: storage.Metadata{Source: "site.test_about.txt", ChunkIndex: 0}},
	}}
	b := New(&fakeEmbedder{vectors: queryVector()}, retriever, &fakeCompleter{answer: "ok"}, 3, quietLogger())

	answer, err := b.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://site.test/docs",
		"https://site.test/about",
	}, answer.Sources)
}

// Empty retrieval still completes with an empty context block so the model
// can decline instead of the call erroring out.
func TestAnswer_EmptyIndex(t *testing.T) {
	completer := &fakeCompleter{answer: "I don't have information about that."}
	b := New(&fakeEmbedder{vectors: queryVector()}, &fakeRetriever{}, completer, 3, quietLogger())

	answer, err := b.Answer(context.Background(), "what is the meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, "I don't have information about that.", answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, completer.gotContext)
}

func TestAnswer_EmbedFailure(t *testing.T) {
	b := New(&fakeEmbedder{err: errors.New("api down")}, &fakeRetriever{}, &fakeCompleter{}, 3, quietLogger())

	_, err := b.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed question")
}

func TestAnswer_RetrieverFailure(t *testing.T) {
	b := New(
		&fakeEmbedder{vectors: queryVector()},
		&fakeRetriever{err: errors.New("store unreachable")},
		&fakeCompleter{}, 3, quietLogger(),
	)

	_, err := b.Answer(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query index")
}

func TestNew_TopKFallback(t *testing.T) {
	retriever := &fakeRetriever{}
	b := New(&fakeEmbedder{vectors: queryVector()}, retriever, &fakeCompleter{answer: "ok"}, 0, quietLogger())

	_, err := b.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, retriever.gotK)
}
