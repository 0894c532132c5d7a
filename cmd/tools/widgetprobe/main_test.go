package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/withjet/backend/internal/widget"
)

func TestReplayScript(t *testing.T) {
	var out bytes.Buffer
	loader, err := widget.Init(widget.Attributes{
		"data-withjet-bot-id": "demo",
		"data-withjet-origin": "https://bots.example",
	}, &consoleSurface{w: &out}, &consoleChannel{w: &out})
	require.NoError(t, err)

	script := strings.Join([]string{
		`# host opens the panel`,
		`{"action":"open"}`,
		`{"origin":"https://evil.example","data":{"type":"REQUEST_CLOSE","botId":"demo"}}`,
		`{"origin":"https://bots.example","data":{"type":"RESIZE","botId":"demo","width":400,"height":"700"}}`,
		`{"action":"frame","type":"SET_BADGE","fields":{"count":3}}`,
		`{"action":"key","key":"Escape"}`,
	}, "\n")

	require.NoError(t, replayScript(loader, strings.NewReader(script), &out))

	assert.Equal(t, widget.State{
		Open:       false,
		Dimensions: widget.Dimensions{Width: 400, Height: 700},
		Badge:      3,
	}, loader.State())

	printed := out.String()
	assert.Contains(t, printed, "launcher frame=https://bots.example/bot/embed?botId=demo&lang=it&theme=auto")
	assert.Contains(t, printed, "panel show 400x700")
	assert.Contains(t, printed, "badge 3")
	assert.Contains(t, printed, `post {"type":"CLOSE","botId":"demo"} -> https://bots.example`)
}

func TestReplayScriptRejectsUnknownAction(t *testing.T) {
	loader, err := widget.Init(widget.Attributes{"bot-id": "demo", "origin": "https://bots.example"},
		&consoleSurface{w: &bytes.Buffer{}}, &consoleChannel{w: &bytes.Buffer{}})
	require.NoError(t, err)

	err = replayScript(loader, strings.NewReader(`{"action":"explode"}`), &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown action")
}
