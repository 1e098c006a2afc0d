package tracking

// Key addresses exactly one position record. The system historically mixed
// two addressing schemes; the session id is canonical and the driver id
// survives as an alias resolved through the session registry.
type Key struct {
	kind string
	id   string
}

const (
	kindSession = "session"
	kindDriver  = "driver"
)

func SessionKey(id string) Key { return Key{kind: kindSession, id: id} }
func DriverKey(id string) Key  { return Key{kind: kindDriver, id: id} }

func (k Key) IsSession() bool { return k.kind == kindSession }
func (k Key) ID() string      { return k.id }
func (k Key) Zero() bool      { return k.id == "" }

// String is the storage key handed to the presence store.
func (k Key) String() string { return k.kind + ":" + k.id }
