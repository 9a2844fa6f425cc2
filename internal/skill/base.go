package skill

// Base provides the identity half of a Skill.
type Base struct {
	info Info
}

// NewBase seeds the helper with skill info.
func NewBase(info Info) Base {
	return Base{info: info}
}

// Info implements Skill.Info.
func (b *Base) Info() Info {
	return b.info
}
