package contextkey

// key is a private type to avoid context key collisions across packages.
type key string

const (
	InvocationID key = "invocation_id"
	Operation    key = "operation"
	Binary       key = "binary"
)
