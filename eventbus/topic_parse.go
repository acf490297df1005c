package eventbus

import (
	"strings"
	"time"
)

// ParseRetryDelayFromTopicName extracts the retry delay from a retry topic
// name of the form "<base>.retry.<duration>", e.g.
// "tube-brief.summary.events.retry.1m0s" -> 1m0s.
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	durStr := name[idx+7:]
	d, err := time.ParseDuration(durStr)
	if err != nil {
		return 0, false
	}
	return d, true
}
