package session

// Handle is the request-scoped attribute map the resolver reads and writes.
// *Session implements it; tests may use any map-backed type.
type Handle interface {
	Get(name string) (string, bool)
	Put(name, value string)
	Remove(name string)
}
