package models

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&UserProfile{},
		&Book{},
		&ReadingSession{},
		&Badge{},
		&Notification{},
	}
}
