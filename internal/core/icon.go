package core

import "strings"

// IconLibrary selects the icon family a name is resolved against. The
// presentation layer owns the actual rendering; the core only stores the tag.
const (
	IconMaterial  IconLibrary = "mi"
	IconCommunity IconLibrary = "mc"
)

type (
	IconLibrary string

	// Icon is the decoded form of the packed "lib:name" strings stored in
	// the database, e.g. "mi:wifi" or "mc:gift-outline".
	Icon struct {
		Library IconLibrary
		Name    string
	}
)

// ParseIcon decodes a packed icon tag. Bare names default to the material
// library; the legacy "mci:" prefix is folded into "mc:". An empty tag
// yields the zero Icon.
func ParseIcon(packed string) Icon {
	packed = strings.TrimSpace(packed)
	if packed == "" {
		return Icon{}
	}
	if name, ok := strings.CutPrefix(packed, "mci:"); ok {
		return Icon{Library: IconCommunity, Name: name}
	}
	lib, name, ok := strings.Cut(packed, ":")
	if !ok {
		return Icon{Library: IconMaterial, Name: packed}
	}
	return Icon{Library: IconLibrary(lib), Name: name}
}

// Pack returns the storage form of the icon, or "" for the zero Icon.
func (i Icon) Pack() string {
	if i.Name == "" {
		return ""
	}
	lib := i.Library
	if lib == "" {
		lib = IconMaterial
	}
	return string(lib) + ":" + i.Name
}

func (i Icon) IsZero() bool {
	return i.Name == ""
}
