package instance

// BackingMode says where a user's document bytes live.
type BackingMode string

const (
	// BackingMemory marks a non-durable in-memory document with no
	// guaranteed lifetime.
	BackingMemory BackingMode = "memory"

	// BackingDurable marks a document persisted in the durable store.
	BackingDurable BackingMode = "durable"
)

// Locator is an opaque reference to the current home of a user's document:
// either the in-memory table (user-scoped, Path empty) or a durable object
// path.
type Locator struct {
	Mode BackingMode `json:"mode"`
	Path string      `json:"path,omitempty"`
}

// MemoryLocator returns the locator for the in-memory table.
func MemoryLocator() Locator {
	return Locator{Mode: BackingMemory}
}

// DurableLocator returns a locator for a durable object path.
func DurableLocator(path string) Locator {
	return Locator{Mode: BackingDurable, Path: path}
}

func (l Locator) String() string {
	return string(l.Mode) + ":" + l.Path
}
