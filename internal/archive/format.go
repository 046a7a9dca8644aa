package archive

// Format identifies an archive container type.
type Format int

const (
	Unknown Format = iota
	SevenZip
	Zip
	Rar
)

func (f Format) String() string {
	switch f {
	case SevenZip:
		return "7z"
	case Zip:
		return "zip"
	case Rar:
		return "rar"
	default:
		return "unknown"
	}
}

// Unit is one logical archive to extract: a primary file, its ordered
// fragments (one element for single-file archives), and the password to try.
type Unit struct {
	Path     string
	Format   Format
	Parts    []string
	Password string
}

// Multipart reports whether the unit spans more than one fragment.
func (u Unit) Multipart() bool {
	return len(u.Parts) > 1
}
