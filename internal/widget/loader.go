package widget

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// KeyEscape is the key name that dismisses an open panel.
const KeyEscape = "Escape"

// Surface is the visual half of the widget: launcher, panel and badge.
type Surface interface {
	ShowLauncher(frameURL string)
	ShowPanel(d Dimensions)
	HidePanel()
	SetBadge(count int)
}

// Channel delivers host messages into the content frame. targetOrigin is
// always the configured origin.
type Channel interface {
	PostMessage(msg HostMessage, targetOrigin string) error
}

// State is the observable widget session state.
type State struct {
	Open       bool       `json:"isOpen"`
	Dimensions Dimensions `json:"panelDimensions"`
	Badge      int        `json:"badgeCount"`
}

// Loader owns one embedded widget instance for the lifetime of a host page.
type Loader struct {
	mu       sync.Mutex
	cfg      Config
	frameURL string
	accept   MessageFilter
	surface  Surface
	channel  Channel
	state    State
}

// Init reads the embedding attributes and mounts the widget. On a
// configuration error nothing is rendered and the error is logged.
func Init(attrs Attributes, surface Surface, channel Channel) (*Loader, error) {
	cfg, err := ParseAttributes(attrs)
	if err != nil {
		log.Error().Err(err).Str("component", "widget").Msg("[withjet] initialization aborted")
		return nil, err
	}
	return New(cfg, surface, channel)
}

// New mounts a widget for an already parsed Config.
func New(cfg Config, surface Surface, channel Channel) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Str("component", "widget").Msg("[withjet] initialization aborted")
		return nil, err
	}
	origin, err := NormalizeOrigin(cfg.Origin)
	if err != nil {
		return nil, err
	}
	cfg.Origin = origin

	l := &Loader{
		cfg:      cfg,
		frameURL: FrameURL(cfg),
		accept:   NewMessageFilter(cfg.Origin, cfg.BotID),
		surface:  surface,
		channel:  channel,
		state:    State{Dimensions: DefaultDimensions},
	}
	surface.ShowLauncher(l.frameURL)
	return l, nil
}

// FrameURL returns the URL the content frame was pointed at.
func (l *Loader) FrameURL() string {
	return l.frameURL
}

// Config returns the loader configuration.
func (l *Loader) Config() Config {
	return l.cfg
}

// State returns a snapshot of the widget session state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Open shows the panel. It is a no-op when already open.
func (l *Loader) Open() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openLocked()
}

// Close hides the panel. It is a no-op when already closed.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

// Toggle flips between Open and Closed.
func (l *Loader) Toggle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Open {
		l.closeLocked()
		return
	}
	l.openLocked()
}

// Send forwards an application payload to the frame.
func (l *Loader) Send(payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.post(TypeSend, payload)
}

// HandleKey reacts to a host page key press.
func (l *Loader) HandleKey(key string) {
	if key != KeyEscape {
		return
	}
	l.Close()
}

// HandleBackdropClick reacts to a click on the dimmed overlay.
func (l *Loader) HandleBackdropClick() {
	l.Close()
}

// HandleMessage dispatches one message taken off the page message bus. The
// origin is checked before the payload is decoded; anything failing the
// filter is dropped without a trace.
func (l *Loader) HandleMessage(origin string, data []byte) {
	if origin != l.cfg.Origin {
		return
	}
	var msg frameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !l.accept(origin, msg.BotID) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch normalizeType(msg.Type) {
	case TypeRequestClose:
		l.closeLocked()
	case TypeSetBadge:
		l.state.Badge = BadgeCount(msg.Count)
		l.surface.SetBadge(l.state.Badge)
	case TypeResize:
		l.resizeLocked(msg.Width, msg.Height)
	}
}

func (l *Loader) openLocked() {
	if l.state.Open {
		return
	}
	l.state.Open = true
	l.surface.ShowPanel(l.state.Dimensions)
	l.post(TypeOpen, nil)
}

func (l *Loader) closeLocked() {
	if !l.state.Open {
		return
	}
	l.state.Open = false
	l.surface.HidePanel()
	l.post(TypeClose, nil)
}

func (l *Loader) resizeLocked(width, height json.RawMessage) {
	next := l.state.Dimensions
	if w, ok := dimension(width, MinWidth, MaxWidth); ok {
		next.Width = w
	}
	if h, ok := dimension(height, MinHeight, MaxHeight); ok {
		next.Height = h
	}
	if next == l.state.Dimensions {
		return
	}
	l.state.Dimensions = next
	if l.state.Open {
		l.surface.ShowPanel(next)
	}
}

func (l *Loader) post(t MessageType, payload any) {
	msg := HostMessage{Type: t, BotID: l.cfg.BotID, Payload: payload}
	if err := l.channel.PostMessage(msg, l.cfg.Origin); err != nil {
		log.Debug().Err(err).Str("component", "widget").Str("type", string(t)).Msg("post to frame failed")
	}
}
