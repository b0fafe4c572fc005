package broker

// Warble is the wire payload published for each newly created message.
type Warble struct {
	MessageID uint   `json:"message_id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// WarbleBroker fans newly created warbles out to live feed subscribers.
// Each Subscribe call returns an independent subscription; closing one does
// not affect the others.
type WarbleBroker interface {
	Publish(w Warble) error
	Subscribe() (Subscription, error)
	Close() error
}

// Subscription is one consumer's view of the feed.
type Subscription interface {
	// Warbles is closed when the subscription ends.
	Warbles() <-chan Warble
	Close() error
}
