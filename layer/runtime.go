package layer

// RuntimeKind identifies a known runtime below the layer.
type RuntimeKind uint8

const (
	RuntimeOther RuntimeKind = iota
	RuntimeSteamVR
	RuntimeOculus
	RuntimeWMR
	RuntimeMonado
)

var runtimeNames = map[string]RuntimeKind{
	"SteamVR/OpenXR":                 RuntimeSteamVR,
	"Oculus":                         RuntimeOculus,
	"Windows Mixed Reality Runtime":  RuntimeWMR,
	"Monado(XRT) by Collabora et al": RuntimeMonado,
}

func (k RuntimeKind) String() string {
	switch k {
	case RuntimeSteamVR:
		return "steamvr"
	case RuntimeOculus:
		return "oculus"
	case RuntimeWMR:
		return "wmr"
	case RuntimeMonado:
		return "monado"
	default:
		return "other"
	}
}

// Runtime is the classified identity of the runtime below the layer.
type Runtime struct {
	// Name is the name the runtime reported.
	Name string
	Kind RuntimeKind
}

// ClassifyRuntime matches a runtime name exactly against the known
// runtimes. Unknown names classify as RuntimeOther.
func ClassifyRuntime(name string) Runtime {
	return Runtime{Name: name, Kind: runtimeNames[name]}
}

func (r Runtime) String() string {
	if r.Kind == RuntimeOther {
		return "other(" + r.Name + ")"
	}
	return r.Kind.String()
}
