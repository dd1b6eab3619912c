package pipeline

import "VoxelForge/internal/volume"

// Sync drena os chunks sujos do volume e pede a regeneração de cada um.
// Deve rodar na thread de commit, uma vez por tick. Devolve quantos pediu.
func (p *Pipeline) Sync(v *volume.Volume) int {
	n := 0
	for _, chunk := range v.DrainDirty() {
		r, ok := v.Region(chunk)
		if !ok {
			continue
		}
		p.Request(r)
		n++
	}
	return n
}
