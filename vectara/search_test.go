package vectara_test

import (
	"testing"

	"github.com/fwojciec/streamquery"
	"github.com/fwojciec/streamquery/vectara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeSearchResponse(t *testing.T) {
	t.Parallel()

	t.Run("splits snippet and folds metadata", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{{
				DocumentIndex: 0,
				Text:          "before " + vectara.SnippetStartTag + "middle" + vectara.SnippetEndTag + "after",
			}},
			Document: []vectara.Document{{
				ID:       "doc-1",
				Metadata: []vectara.Metadata{{Name: "source", Value: "doc1"}, {Name: "title", Value: "T"}},
			}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, streamquery.Result{
			ID:       "doc-1",
			Snippet:  streamquery.Snippet{Pre: "before ", Text: "middle", Post: "after"},
			Source:   "doc1",
			Title:    "T",
			Metadata: map[string]string{"source": "doc1", "title": "T"},
		}, results[0])
	})

	t.Run("missing title uses placeholder", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{{Text: "text"}},
			Document: []vectara.Document{{ID: "doc-1", Metadata: []vectara.Metadata{{Name: "url", Value: "https://example.com/a"}}}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Untitled", results[0].Title)
		assert.Equal(t, "https://example.com/a", results[0].URL)
		assert.Empty(t, results[0].Source)
	})

	t.Run("empty title uses placeholder", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{{Text: "text"}},
			Document: []vectara.Document{{ID: "doc-1", Metadata: []vectara.Metadata{{Name: "title", Value: ""}}}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, streamquery.DefaultTitle, results[0].Title)
	})

	t.Run("empty response yields empty results", func(t *testing.T) {
		t.Parallel()
		results, err := vectara.DeserializeSearchResponse(&vectara.SearchResponse{})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("nil response yields nil results", func(t *testing.T) {
		t.Parallel()
		results, err := vectara.DeserializeSearchResponse(nil)
		require.NoError(t, err)
		assert.Nil(t, results)
	})

	t.Run("preserves match order and resolves each document", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{
				{DocumentIndex: 1, Text: "second doc"},
				{DocumentIndex: 0, Text: "first doc"},
				{DocumentIndex: 1, Text: "second doc again"},
			},
			Document: []vectara.Document{{ID: "a"}, {ID: "b"}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "b", results[0].ID)
		assert.Equal(t, "a", results[1].ID)
		assert.Equal(t, "b", results[2].ID)
		assert.Equal(t, "second doc again", results[2].Snippet.Text)
	})

	t.Run("duplicate metadata names keep the last value", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{{Text: "x"}},
			Document: []vectara.Document{{ID: "a", Metadata: []vectara.Metadata{
				{Name: "title", Value: "Draft"},
				{Name: "lang", Value: "eng"},
				{Name: "title", Value: "Final"},
			}}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "Final", results[0].Title)
		assert.Equal(t, map[string]string{"title": "Final", "lang": "eng"}, results[0].Metadata)
	})

	t.Run("out of range document index", func(t *testing.T) {
		t.Parallel()
		resp := &vectara.SearchResponse{
			Response: []vectara.Match{{DocumentIndex: 2, Text: "x"}},
			Document: []vectara.Document{{ID: "a"}},
		}

		results, err := vectara.DeserializeSearchResponse(resp)
		assert.ErrorIs(t, err, streamquery.ErrDocumentIndex)
		assert.Nil(t, results)
	})
}

func TestDeserializeSearchResponse_Snippet(t *testing.T) {
	t.Parallel()

	start, end := vectara.SnippetStartTag, vectara.SnippetEndTag
	tests := []struct {
		name string
		text string
		want streamquery.Snippet
	}{
		{"both markers", "a " + start + "b" + end + " c", streamquery.Snippet{Pre: "a ", Text: "b", Post: " c"}},
		{"no markers", "plain text", streamquery.Snippet{Text: "plain text"}},
		{"start only", "a " + start + "b c", streamquery.Snippet{Pre: "a ", Text: "b c"}},
		{"end only", "a b" + end + " c", streamquery.Snippet{Text: "a b", Post: " c"}},
		{"markers at edges", start + "all" + end, streamquery.Snippet{Text: "all"}},
		{"empty", "", streamquery.Snippet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := &vectara.SearchResponse{
				Response: []vectara.Match{{Text: tt.text}},
				Document: []vectara.Document{{ID: "a"}},
			}
			results, err := vectara.DeserializeSearchResponse(resp)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0].Snippet)
		})
	}
}

func TestUnmarshalSearchResponse(t *testing.T) {
	t.Parallel()

	t.Run("decodes wire shape", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{
			"response": [
				{"text": "Go %START_SNIPPET%is%END_SNIPPET% fun", "score": 0.8, "documentIndex": 0},
				{"text": "Rust", "score": 0.5, "documentIndex": "1"}
			],
			"document": [
				{"id": "go.md", "metadata": [{"name": "title", "value": "Go"}, {"name": "source", "value": "docs"}]},
				{"id": "rust.md", "metadata": []}
			]
		}`)

		resp, err := vectara.UnmarshalSearchResponse(data)
		require.NoError(t, err)
		require.NotNil(t, resp)
		require.Len(t, resp.Response, 2)
		assert.Equal(t, vectara.DocumentIndex(1), resp.Response[1].DocumentIndex)
		assert.InDelta(t, 0.8, resp.Response[0].Score, 1e-9)

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, streamquery.Snippet{Pre: "Go ", Text: "is", Post: " fun"}, results[0].Snippet)
		assert.Equal(t, "docs", results[0].Source)
		assert.Equal(t, "rust.md", results[1].ID)
		assert.Equal(t, "Untitled", results[1].Title)
		assert.Empty(t, results[1].Metadata)
	})

	t.Run("null yields nil", func(t *testing.T) {
		t.Parallel()
		resp, err := vectara.UnmarshalSearchResponse([]byte("null"))
		require.NoError(t, err)
		assert.Nil(t, resp)

		results, err := vectara.DeserializeSearchResponse(resp)
		require.NoError(t, err)
		assert.Nil(t, results)
	})

	t.Run("invalid document index", func(t *testing.T) {
		t.Parallel()
		_, err := vectara.UnmarshalSearchResponse([]byte(`{"response":[{"documentIndex":"first"}]}`))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		_, err := vectara.UnmarshalSearchResponse([]byte(`{"response":`))
		assert.Error(t, err)
	})
}
