package vectara_test

import (
	"testing"

	"github.com/fwojciec/streamquery"
	"github.com/fwojciec/streamquery/mock"
	"github.com/fwojciec/streamquery/vectara"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decode(t *testing.T, chunks ...string) []streamquery.Event {
	t.Helper()
	var rec mock.Sink
	d := vectara.NewDecoder(&rec)
	for _, c := range chunks {
		d.ConsumeChunk(c)
	}
	return rec.Events
}

func TestDecoder_MessageSplitAcrossChunks(t *testing.T) {
	t.Parallel()

	events := decode(t,
		"data:{\"type\":\"chat_info\",\"chat_id\":\"c1\",\"turn_id\":\"t1\"}\n",
		`data:{"type":"generation_chunk"`,
		",\"generation_chunk\":\"Hello\"}\n",
	)

	require.Len(t, events, 2)
	assert.Equal(t, streamquery.EventChatInfo{ChatID: "c1", TurnID: "t1"}, events[0])
	assert.Equal(t, streamquery.EventGenerationChunk{UpdatedText: "Hello", Delta: "Hello"}, events[1])
}

func TestDecoder_FullSession(t *testing.T) {
	t.Parallel()

	wire := "event: search_results\n" +
		`data:{"type":"search_results","search_results":[{"text":"Go is fun.","score":0.91,"part_metadata":{"lang":"eng"},"document_metadata":{"title":"Go"},"document_id":"doc-1"}]}` + "\n\n" +
		"event: chat_info\n" +
		`data:{"type":"chat_info","chat_id":"cht_1","turn_id":"trn_1"}` + "\n\n" +
		"event: generation_chunk\n" +
		`data:{"type":"generation_chunk","generation_chunk":"Go "}` + "\n\n" +
		"event: generation_chunk\n" +
		`data:{"type":"generation_chunk","generation_chunk":"is fun [1]."}` + "\n\n" +
		"event: generation_end\n" +
		`data:{"type":"generation_end"}` + "\n\n" +
		"event: factual_consistency_score\n" +
		`data:{"type":"factual_consistency_score","factual_consistency_score":0.64}` + "\n\n" +
		"event: end\n" +
		`data:{"type":"end"}` + "\n\n"

	events := decode(t, wire)

	require.Len(t, events, 7)
	assert.Equal(t, streamquery.EventSearchResults{Results: []streamquery.SearchResult{{
		Text:             "Go is fun.",
		Score:            0.91,
		PartMetadata:     map[string]any{"lang": "eng"},
		DocumentMetadata: map[string]any{"title": "Go"},
		DocumentID:       "doc-1",
	}}}, events[0])
	assert.Equal(t, streamquery.EventChatInfo{ChatID: "cht_1", TurnID: "trn_1"}, events[1])
	assert.Equal(t, streamquery.EventGenerationChunk{UpdatedText: "Go ", Delta: "Go "}, events[2])
	assert.Equal(t, streamquery.EventGenerationChunk{UpdatedText: "Go is fun [1].", Delta: "is fun [1]."}, events[3])
	assert.Equal(t, streamquery.EventGenerationEnd{}, events[4])
	assert.Equal(t, streamquery.EventFactualConsistencyScore{Score: 0.64}, events[5])
	assert.Equal(t, streamquery.EventEnd{}, events[6])
}

func TestDecoder_ErrorMessage(t *testing.T) {
	t.Parallel()

	events := decode(t, `data:{"type":"error","messages":["corpus not found","check the key"]}`+"\n")

	require.Len(t, events, 1)
	assert.Equal(t, streamquery.EventError{Messages: []string{"corpus not found", "check the key"}}, events[0])
}

func TestDecoder_ContinuationLines(t *testing.T) {
	t.Parallel()

	events := decode(t,
		"data:{\"type\":\"generation_chunk\",\n"+
			"  \"generation_chunk\":\n"+
			"\"multi-line\"}\n",
	)

	require.Len(t, events, 1)
	assert.Equal(t, streamquery.EventGenerationChunk{UpdatedText: "multi-line", Delta: "multi-line"}, events[0])
}

func TestDecoder_SplitInsidePrefix(t *testing.T) {
	t.Parallel()

	events := decode(t,
		"da", "ta:{\"type\":\"generation_end\"}\nev", "ent: end\n", "data:{\"type\":\"end\"}\n",
	)

	assert.Equal(t, []streamquery.Event{streamquery.EventGenerationEnd{}, streamquery.EventEnd{}}, events)
}

func TestDecoder_MessageWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	var rec mock.Sink
	d := vectara.NewDecoder(&rec)
	d.ConsumeChunk(`data:{"type":"end"}`)

	assert.Equal(t, []streamquery.Event{streamquery.EventEnd{}}, rec.Events)
	assert.Empty(t, d.Pending())

	// The newline that eventually terminates the line is plain padding.
	d.ConsumeChunk("\n\n")
	assert.Len(t, rec.Events, 1)
}

func TestDecoder_CRLF(t *testing.T) {
	t.Parallel()

	events := decode(t, "event: end\r\ndata:{\"type\":\"end\"}\r\n\r\n")

	assert.Equal(t, []streamquery.Event{streamquery.EventEnd{}}, events)
}

func TestDecoder_EventsFlushedAfterWholeChunk(t *testing.T) {
	t.Parallel()

	var d *vectara.Decoder
	var seen []string
	d = vectara.NewDecoder(streamquery.SinkFunc(func(e streamquery.Event) {
		// Both deltas are accumulated before the first event is delivered.
		seen = append(seen, d.Text())
	}))
	d.ConsumeChunk(`data:{"type":"generation_chunk","generation_chunk":"a"}` + "\n" +
		`data:{"type":"generation_chunk","generation_chunk":"b"}` + "\n")

	assert.Equal(t, []string{"ab", "ab"}, seen)
}

func TestDecoder_AccumulatesAcrossChunks(t *testing.T) {
	t.Parallel()

	var rec mock.Sink
	d := vectara.NewDecoder(&rec)
	for _, delta := range []string{"The ", "answer ", "is ", "42."} {
		d.ConsumeChunk(`data:{"type":"generation_chunk","generation_chunk":"` + delta + `"}` + "\n")
	}

	assert.Equal(t, "The answer is 42.", d.Text())
	require.Len(t, rec.Events, 4)
	last, ok := rec.Events[3].(streamquery.EventGenerationChunk)
	require.True(t, ok)
	assert.Equal(t, "The answer is 42.", last.UpdatedText)
	assert.Equal(t, "42.", last.Delta)
}

func TestDecoder_MalformedFragment(t *testing.T) {
	t.Parallel()

	t.Run("is retained and never dispatched", func(t *testing.T) {
		t.Parallel()
		var rec mock.Sink
		d := vectara.NewDecoder(&rec)
		d.ConsumeChunk("data:{\"type\":\"generation_chunk\",\"generation_chunk\":\n")
		d.ConsumeChunk("oops\n")

		assert.Empty(t, rec.Events)
		assert.Equal(t, `{"type":"generation_chunk","generation_chunk":oops`, d.Pending())
	})

	t.Run("next data line recovers", func(t *testing.T) {
		t.Parallel()
		events := decode(t,
			"data:{\"type\":\"chat_info\",\"chat_id\":\n",
			"data:{\"type\":\"generation_end\"}\n",
		)
		assert.Equal(t, []streamquery.Event{streamquery.EventGenerationEnd{}}, events)
	})

	t.Run("max pending discards oversized fragment", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zapcore.WarnLevel)
		var rec mock.Sink
		d := vectara.NewDecoder(&rec, vectara.WithMaxPending(16), vectara.WithLogger(zap.New(core)))
		d.ConsumeChunk("data:{\"type\":\"generation_chunk\",\"generation_chunk\":\"way too long\n")

		assert.Empty(t, d.Pending())
		assert.Equal(t, 1, logs.FilterMessage("discarding unresolved stream fragment").Len())

		// A continuation no longer has anything to attach to, so it parses alone.
		d.ConsumeChunk("{\"type\":\"end\"}\n")
		assert.Equal(t, []streamquery.Event{streamquery.EventEnd{}}, rec.Events)
	})
}

func TestDecoder_UnrecognizedKind(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	var rec mock.Sink
	d := vectara.NewDecoder(&rec, vectara.WithLogger(zap.New(core)))
	d.ConsumeChunk(`data:{"type":"rerank_info","model":"slingshot"}` + "\n" + `data:{"type":"end"}` + "\n")

	assert.Equal(t, []streamquery.Event{streamquery.EventEnd{}}, rec.Events)
	entries := logs.FilterMessage("unhandled stream message").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rerank_info", entries[0].ContextMap()["type"])
	assert.Empty(t, d.Pending())
}

func TestDecoder_MalformedShape(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	var rec mock.Sink
	d := vectara.NewDecoder(&rec, vectara.WithLogger(zap.New(core)))
	d.ConsumeChunk(`data:{"type":"generation_chunk","generation_chunk":7}` + "\n" +
		`data:[1,2,3]` + "\n" +
		`data:{"type":"generation_chunk","generation_chunk":"ok"}` + "\n")

	require.Len(t, rec.Events, 1)
	assert.Equal(t, streamquery.EventGenerationChunk{UpdatedText: "ok", Delta: "ok"}, rec.Events[0])
	assert.Equal(t, "ok", d.Text())
	assert.Equal(t, 1, logs.FilterMessage("dropping malformed stream message").Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping stream message without a type").Len())
}

func TestDecoder_PendingIncludesUnterminatedLine(t *testing.T) {
	t.Parallel()

	var rec mock.Sink
	d := vectara.NewDecoder(&rec)
	d.ConsumeChunk(`data:{"type":"generation_chunk"`)
	assert.Equal(t, `{"type":"generation_chunk"`, d.Pending())

	d.ConsumeChunk(`,"generation_chunk":"x"`)
	assert.Equal(t, `{"type":"generation_chunk","generation_chunk":"x"`, d.Pending())

	d.ConsumeChunk("}\n")
	assert.Empty(t, d.Pending())
	assert.Len(t, rec.Events, 1)
}

func TestDecoder_EmptyChunks(t *testing.T) {
	t.Parallel()

	events := decode(t, "", "\n", "   \n\t\n", "")
	assert.Empty(t, events)
}
