package redis

const (
	// KeySites is the single durable key holding the JSON site list.
	KeySites = "cooloff:sites"
	// KeySettings is the durable key holding the JSON settings object.
	KeySettings = "cooloff:settings"
)
