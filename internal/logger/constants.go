package logger

// Log level string values
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log format string values
const (
	FormatJSON = "json"
	FormatText = "text"
)

const (
	DefaultServiceName = "wildstep"
	DefaultVersion     = "dev"
	EnvironmentDev     = "dev"
)

// Attribute keys
const (
	AttrService     = "service"
	AttrVersion     = "version"
	AttrEnvironment = "environment"
	AttrSession     = "session"
	AttrPlayer      = "player"
)
