// Command widgetprobe drives the widget loader outside a browser: it builds the
// frame URL from embed attributes and replays scripted host actions and frame
// messages through the origin-checked protocol.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/logging"
	"github.com/zhouzirui/withjet/backend/internal/widget"
)

func main() {
	_ = godotenv.Load()

	botID := flag.String("bot-id", "", "bot identifier (data-withjet-bot-id)")
	origin := flag.String("origin", os.Getenv("WIDGET_PUBLIC_ORIGIN"), "embed origin (data-withjet-origin)")
	embedPath := flag.String("embed-path", "", "embed path, default /bot/embed")
	token := flag.String("token", "", "public embed token")
	theme := flag.String("theme", "", "theme, default auto")
	lang := flag.String("lang", "", "locale, default it")
	user := flag.String("user", "", "user metadata as a JSON object")
	replay := flag.String("replay", "", "JSON-lines script to replay, - for stdin")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.Setup(config.LogConfig{Level: level, Format: "console"})

	attrs := widget.Attributes{
		widget.AttrBotID:     *botID,
		widget.AttrOrigin:    *origin,
		widget.AttrEmbedPath: *embedPath,
		widget.AttrToken:     *token,
		widget.AttrTheme:     *theme,
		widget.AttrLang:      *lang,
		widget.AttrUser:      *user,
	}

	out := os.Stdout
	loader, err := widget.Init(attrs, &consoleSurface{w: out}, &consoleChannel{w: out})
	if err != nil {
		os.Exit(2)
	}

	if *replay != "" {
		in, closeFn, err := openScript(*replay)
		if err != nil {
			log.Fatal().Err(err).Msg("open replay script")
		}
		defer closeFn()
		if err := replayScript(loader, in, out); err != nil {
			log.Fatal().Err(err).Msg("replay failed")
		}
	}

	printState(out, loader.State())
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// step is one line of a replay script. Lines with an action drive the
// host side; lines with data are frame messages received from origin. The
// frame action builds the envelope from type and fields for the configured
// bot, from the configured origin unless one is given.
type step struct {
	Action  string          `json:"action"`
	Key     string          `json:"key"`
	Payload any             `json:"payload"`
	Origin  string          `json:"origin"`
	Data    json.RawMessage `json:"data"`
	Type    string          `json:"type"`
	Fields  map[string]any  `json:"fields"`
}

func replayScript(loader *widget.Loader, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var s step
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		switch s.Action {
		case "":
			loader.HandleMessage(s.Origin, s.Data)
		case "open":
			loader.Open()
		case "close":
			loader.Close()
		case "toggle":
			loader.Toggle()
		case "key":
			loader.HandleKey(s.Key)
		case "backdrop":
			loader.HandleBackdropClick()
		case "send":
			loader.Send(s.Payload)
		case "frame":
			cfg := loader.Config()
			data, err := widget.FrameMessage(widget.MessageType(s.Type), cfg.BotID, s.Fields)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			origin := s.Origin
			if origin == "" {
				origin = cfg.Origin
			}
			fmt.Fprintf(out, "frame %s <- %s\n", data, origin)
			loader.HandleMessage(origin, data)
		default:
			return fmt.Errorf("line %d: unknown action %q", line, s.Action)
		}
	}
	return scanner.Err()
}

func printState(w io.Writer, state widget.State) {
	raw, _ := json.Marshal(state)
	fmt.Fprintf(w, "state %s\n", raw)
}

type consoleSurface struct {
	w io.Writer
}

func (s *consoleSurface) ShowLauncher(frameURL string) {
	fmt.Fprintf(s.w, "launcher frame=%s\n", frameURL)
}

func (s *consoleSurface) ShowPanel(d widget.Dimensions) {
	fmt.Fprintf(s.w, "panel show %dx%d\n", d.Width, d.Height)
}

func (s *consoleSurface) HidePanel() {
	fmt.Fprintln(s.w, "panel hide")
}

func (s *consoleSurface) SetBadge(count int) {
	fmt.Fprintf(s.w, "badge %d\n", count)
}

type consoleChannel struct {
	w io.Writer
}

func (c *consoleChannel) PostMessage(msg widget.HostMessage, targetOrigin string) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.w, "post %s -> %s\n", raw, targetOrigin)
	return err
}
