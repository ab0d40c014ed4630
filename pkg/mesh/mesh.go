package mesh

// CoreMesh is a named group of submeshes.
type CoreMesh struct {
	Name      string
	Submeshes []*CoreSubmesh
}

// New creates an empty mesh.
func New(name string) *CoreMesh {
	return &CoreMesh{Name: name}
}

// AddSubmesh appends a submesh and returns its id.
func (m *CoreMesh) AddSubmesh(s *CoreSubmesh) int {
	m.Submeshes = append(m.Submeshes, s)
	return len(m.Submeshes) - 1
}

// Submesh returns the submesh with the given id.
func (m *CoreMesh) Submesh(id int) (*CoreSubmesh, bool) {
	if id < 0 || id >= len(m.Submeshes) {
		return nil, false
	}
	return m.Submeshes[id], true
}

// Scale scales the vertex positions of every submesh.
func (m *CoreMesh) Scale(factor float32) {
	for _, s := range m.Submeshes {
		s.Scale(factor)
	}
}
