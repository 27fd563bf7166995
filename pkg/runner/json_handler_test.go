package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Render(t *testing.T) {
	buf := &bytes.Buffer{}
	h := runner.NewJSONHandler(strings.NewReader(""), buf)
	ctx := context.Background()

	h.Render(ctx, domain.RenderCommand{Kind: domain.RenderBotMessage, Payload: domain.Message{Text: "Oi!"}})
	h.Render(ctx, domain.RenderCommand{Kind: domain.RenderTypingHide})
	h.Render(ctx, domain.RenderCommand{Kind: domain.RenderOpenURL, Payload: domain.Handoff{Channel: domain.ChannelApp, URL: "https://wa.me/1"}})
	require.NoError(t, h.SystemOutput(ctx, "bye"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "bot_message", first["kind"])
	assert.Equal(t, "Oi!", first["payload"].(map[string]any)["text"])

	assert.JSONEq(t, `{"kind":"typing_hide"}`, lines[1])
	assert.JSONEq(t, `{"kind":"open_url","payload":{"channel":"app","url":"https://wa.me/1"}}`, lines[2])
	assert.Contains(t, lines[3], `"kind":"system"`)

	assert.Equal(t, domain.ChannelApp, (<-h.Handoffs()).Channel)
}

func TestJSONHandler_Input(t *testing.T) {
	h := runner.NewJSONHandler(strings.NewReader("\"Hello World\"\nplain text\n\"/consent\"\n"), io.Discard)
	ctx := context.Background()

	for _, want := range []string{"Hello World", "plain text", "/consent"} {
		val, err := h.Input(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_InputSanitizesUnquotedStrings(t *testing.T) {
	buf := &bytes.Buffer{}
	in := `"Maria\n\u001b[2JSilva"` + "\n" + `"` + strings.Repeat("a", 40) + `"` + "\n"
	h := runner.NewJSONHandler(strings.NewReader(in), buf, runner.WithJSONMaxInputSize(32))
	ctx := context.Background()

	val, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Maria [2JSilva", val)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF, "an oversized answer is skipped")
	assert.Contains(t, buf.String(), `"kind":"error"`)
}
