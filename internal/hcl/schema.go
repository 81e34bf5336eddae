package hcl

// settingsFile is the top-level shape of an application settings file.
type settingsFile struct {
	WorkflowID      string        `hcl:"workflow_id,optional"`
	HealthcheckPort int           `hcl:"healthcheck_port,optional"`
	Log             *logBlock     `hcl:"log,block"`
	Storage         *storageBlock `hcl:"storage,block"`
}

type logBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

type storageBlock struct {
	Driver    string `hcl:"driver,optional"`
	Path      string `hcl:"path,optional"`
	Address   string `hcl:"address,optional"`
	Password  string `hcl:"password,optional"`
	DB        int    `hcl:"db,optional"`
	KeyPrefix string `hcl:"key_prefix,optional"`
	DSN       string `hcl:"dsn,optional"`
	Table     string `hcl:"table,optional"`
}

// definitionFile is the top-level shape of a workflow definition file.
// Any other top-level content is rejected so typos surface as errors.
type definitionFile struct {
	Steps []*stepBlock `hcl:"step,block"`
}

// stepBlock is a `step "name" { ... }` block.
type stepBlock struct {
	Name      string   `hcl:"name,label"`
	Label     string   `hcl:"label,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
}
