package chat

import "time"

// Session captures a transient anonymous conversation with one bot.
type Session struct {
	ID        string    `json:"id"`
	BotID     string    `json:"botId"`
	CreatedAt time.Time `json:"createdAt"`
}
