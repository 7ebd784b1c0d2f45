package matching

const (
	DefaultMaxResults        = 50
	DefaultLaneHistoryMonths = 12
)

// Config holds engine-wide defaults applied when a request leaves an option unset.
type Config struct {
	DefaultMaxResults         int
	DefaultIncludeFmcsaHealth bool
	LaneHistoryMonths         int
}

func LoadConfig() *Config {
	return &Config{
		DefaultMaxResults:         DefaultMaxResults,
		DefaultIncludeFmcsaHealth: true,
		LaneHistoryMonths:         DefaultLaneHistoryMonths,
	}
}
