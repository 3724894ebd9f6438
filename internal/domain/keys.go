package domain

// Reserved top-level keys of the node form. They select what to run and are
// never sent to the API.
const (
	ResourceKey  = "resource"
	OperationKey = "operation"
	DebugModeKey = "isDebugMode"
)
