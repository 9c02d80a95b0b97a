package constants

import "time"

// SourceName tags every generated notification event and is the name the
// engine registers under in the notification source registry.
const SourceName = "structnotify"

const (
	OperatorBefore = "before"
	OperatorAfter  = "after"
	OperatorAt     = "at"
)

// Synthetic columns requested with every record source query. They are passed
// through to templates but never interpreted by the engine itself.
var SyntheticColumns = []string{
	"%pageid%",
	"%title%",
	"%lastupdate%",
	"%lasteditor%",
	"%lastsummary%",
	"%rowid%",
}

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixDelivered = "delivered:"
)

const (
	DefaultSchemaRegistry = "schemas"
	DefaultMongoDBName    = "structnotify"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultGatherConcurrency = 4
	DefaultDeliveredTTL      = 7 * 24 * time.Hour
)
