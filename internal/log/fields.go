package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldGeneration = "generation"
	FieldPage       = "page"
	FieldPerPage    = "per_page"
	FieldTotal      = "total"
	FieldAccount    = "account"
	FieldYear       = "year"
	FieldRowID      = "row_id"
	FieldCategoryID = "category_id"
	FieldFile       = "file"
	FieldLocation   = "location"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentGateway   = "gateway"
	ComponentList      = "list"
	ComponentDashboard = "dashboard"
	ComponentEditor    = "editor"
	ComponentImport    = "import"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentTUI       = "tui"
)

// Operations defines standard operation names
const (
	OpFetch      = "fetch"
	OpNavigate   = "navigate"
	OpCommit     = "commit"
	OpImport     = "import"
	OpCategorize = "categorize"
	OpSaveView   = "save_view"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
