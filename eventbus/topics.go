package eventbus

// Global topic declarations. Kept in one place so they can be swapped for
// configuration later if needed.

var (
	TopicSummaryEvents = NewTopic("tube-brief.summary.events")
)

var AllTopics = []Topic{
	TopicSummaryEvents,
}
