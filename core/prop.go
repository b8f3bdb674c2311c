package core

// Pool Configuration
const (

	// number of sub-environment workers in the pool | 2
	PropPoolSize = "remenv.pool.size"

	// bounded wait per poll round, e.g., '20ms'; near-zero busy-spins | 20ms
	PropPoolPollTimeout = "remenv.pool.poll-timeout"

	// restart a faulted worker instead of propagating the fault | false
	PropPoolRestartOnFailure = "remenv.pool.restart-on-failure"

	// whether the sub-environments are multi-agent | false
	PropPoolMultiAgent = "remenv.pool.multi-agent"
)

// Logging Configuration
const (

	// log level, one of trace/debug/info/warn/error | info
	PropLogLevel = "remenv.log.level"

	// rolling log file path, stdout only if empty |
	PropLogFile = "remenv.log.file"

	// max log file size in mb | 50
	PropLogFileMaxSize = "remenv.log.file.max-size"

	// max log file age in days | 30
	PropLogFileMaxAge = "remenv.log.file.max-age"

	// max number of rotated log files | 10
	PropLogFileMaxBackups = "remenv.log.file.max-backups"
)

// Metrics Configuration
const (

	// enable prometheus metrics | true
	PropMetricsEnabled = "remenv.metrics.enabled"
)

func init() {
	SetDefProp(PropPoolSize, 2)
	SetDefProp(PropPoolPollTimeout, "20ms")
	SetDefProp(PropPoolRestartOnFailure, false)
	SetDefProp(PropPoolMultiAgent, false)

	SetDefProp(PropLogLevel, "info")
	SetDefProp(PropLogFileMaxSize, 50)
	SetDefProp(PropLogFileMaxAge, 30)
	SetDefProp(PropLogFileMaxBackups, 10)

	SetDefProp(PropMetricsEnabled, true)
}
