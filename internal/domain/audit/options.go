package audit

const (
	// DefaultLimit caps the feed when the caller gives no limit.
	DefaultLimit = 100
	// DefaultHistoryPerRecord caps how many history entries are read per record.
	DefaultHistoryPerRecord = 50
)

// Config tunes the reconstruction bounds. Zero fields take the defaults.
type Config struct {
	DefaultLimit     int
	HistoryPerRecord int
}

func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.HistoryPerRecord <= 0 {
		c.HistoryPerRecord = DefaultHistoryPerRecord
	}
	return c
}
