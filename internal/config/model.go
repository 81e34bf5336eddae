package config

// Storage drivers understood by the application.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// DefaultWorkflowID is the record key used when none is configured.
const DefaultWorkflowID = "default"

// Model is the application configuration loaded from a settings file.
// Empty fields mean "not set" so that callers can layer defaults and flags.
type Model struct {
	WorkflowID      string
	HealthcheckPort int
	Log             Log
	Storage         Storage
}

// Log holds the logger settings.
type Log struct {
	Level  string
	Format string
}

// Storage selects and configures a persistence backend.
type Storage struct {
	Driver string
	// Path is the directory used by the file driver.
	Path string
	// Address, Password, DB and KeyPrefix configure the redis driver.
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	// DSN and Table configure the postgres driver.
	DSN   string
	Table string
}

// Definition is a workflow definition: an ordered list of steps.
type Definition struct {
	Steps []*StepDefinition
}

// StepDefinition declares one step and the names of the steps it depends on.
type StepDefinition struct {
	// Name is the unique handle other steps use in DependsOn.
	Name string
	// Label is the user-visible text. Blank labels fall back to the node id.
	Label     string
	DependsOn []string
	// Source is the file the step was declared in, for error messages.
	Source string
}
