package widget

// MessageFilter is the single gate in front of every inbound handler. The
// page-wide message bus is shared with any other script, so nothing reaches
// dispatch unless it passes.
type MessageFilter func(origin, botID string) bool

// NewMessageFilter accepts exactly the configured origin and bot id.
func NewMessageFilter(origin, botID string) MessageFilter {
	return func(gotOrigin, gotBotID string) bool {
		if origin == "" || botID == "" {
			return false
		}
		return gotOrigin == origin && gotBotID == botID
	}
}
