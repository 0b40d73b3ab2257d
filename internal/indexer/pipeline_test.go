package indexer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/siterag/internal/crawler"
	"github.com/mike-a-ellis/siterag/internal/storage"
)

type fakeCrawler struct {
	paths []string
	stats crawler.Stats
	err   error
}

func (f *fakeCrawler) Crawl(ctx context.Context, seedURL string, maxDepth int) ([]string, crawler.Stats, error) {
	return f.paths, f.stats, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i)}
	}
	return vectors, nil
}

type upsertCall struct {
	vectors [][]float32
	chunks  []string
	metas   []storage.Metadata
}

type fakeIndex struct {
	calls []upsertCall
	err   error
}

func (f *fakeIndex) Upsert(ctx context.Context, vectors [][]float32, chunks []string, metas []storage.Metadata) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, upsertCall{vectors: vectors, chunks: chunks, metas: metas})
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexSite_Success(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArtifact(t, dir, "site.test_docs.txt", "the docs page explains everything in detail"),
		writeArtifact(t, dir, "site.test_about.txt", "the about page introduces the team"),
	}

	c := &fakeCrawler{paths: paths, stats: crawler.Stats{Visited: 2, Saved: 2}}
	idx := &fakeIndex{}
	p := NewPipeline(c, &fakeEmbedder{}, idx, 1000, 200, quietLogger())

	result, err := p.IndexSite(context.Background(), "https://site.test/", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Crawl.Visited)
	assert.Equal(t, 2, result.TotalArtifacts)
	assert.Equal(t, 2, result.IndexedArtifacts)
	assert.Equal(t, 2, result.TotalChunks)
	assert.Empty(t, result.Failed)

	require.Len(t, idx.calls, 2)
	first := idx.calls[0]
	require.Len(t, first.metas, 1)
	assert.Equal(t, "site.test_docs.txt", first.metas[0].Source)
	assert.Equal(t, 0, first.metas[0].ChunkIndex)
	assert.Equal(t, 1, first.metas[0].TotalChunks)
	assert.Len(t, first.vectors, len(first.chunks))
}

func TestIndexSite_ChunkMetadataAlignment(t *testing.T) {
	dir := t.TempDir()
	// Three paragraphs, chunk size forces one chunk each.
	content := "first paragraph of the page\n\nsecond paragraph of the page\n\nthird paragraph of the page"
	path := writeArtifact(t, dir, "site.test_long.txt", content)

	idx := &fakeIndex{}
	p := NewPipeline(&fakeCrawler{paths: []string{path}}, &fakeEmbedder{}, idx, 30, 0, quietLogger())

	result, err := p.IndexSite(context.Background(), "https://site.test/", 1)
	require.NoError(t, err)
	require.Len(t, idx.calls, 1)

	call := idx.calls[0]
	assert.Equal(t, result.TotalChunks, len(call.chunks))
	require.Greater(t, len(call.chunks), 1)
	for i, meta := range call.metas {
		assert.Equal(t, "site.test_long.txt", meta.Source)
		assert.Equal(t, i, meta.ChunkIndex)
		assert.Equal(t, len(call.chunks), meta.TotalChunks)
	}
}

func TestIndexSite_ArtifactFailureDoesNotStopRun(t *testing.T) {
	dir := t.TempDir()
	good := writeArtifact(t, dir, "site.test_good.txt", "a page with real content on it")
	missing := filepath.Join(dir, "site.test_missing.txt")

	idx := &fakeIndex{}
	p := NewPipeline(&fakeCrawler{paths: []string{missing, good}}, &fakeEmbedder{}, idx, 1000, 200, quietLogger())

	result, err := p.IndexSite(context.Background(), "https://site.test/", 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalArtifacts)
	assert.Equal(t, 1, result.IndexedArtifacts)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].Path)
	assert.Contains(t, result.Failed[0].Reason, "read artifact")
	assert.Len(t, idx.calls, 1)
}

func TestIndexSite_EmbedFailureRecorded(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "site.test_page.txt", "content that will fail to embed")

	p := NewPipeline(
		&fakeCrawler{paths: []string{path}},
		&fakeEmbedder{err: errors.New("quota exceeded")},
		&fakeIndex{}, 1000, 200, quietLogger(),
	)

	result, err := p.IndexSite(context.Background(), "https://site.test/", 1)
	require.NoError(t, err)

	assert.Zero(t, result.IndexedArtifacts)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Reason, "quota exceeded")
}

func TestIndexSite_CrawlFailureFailsRun(t *testing.T) {
	p := NewPipeline(
		&fakeCrawler{err: errors.New("seed unreachable")},
		&fakeEmbedder{}, &fakeIndex{}, 1000, 200, quietLogger(),
	)

	_, err := p.IndexSite(context.Background(), "https://site.test/", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed unreachable")
}

func TestIndexSite_EmptyArtifactIndexesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "site.test_blank.txt", "   \n\n  ")

	idx := &fakeIndex{}
	p := NewPipeline(&fakeCrawler{paths: []string{path}}, &fakeEmbedder{}, idx, 1000, 200, quietLogger())

	result, err := p.IndexSite(context.Background(), "https://site.test/", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.IndexedArtifacts)
	assert.Zero(t, result.TotalChunks)
	assert.Empty(t, idx.calls)
}
