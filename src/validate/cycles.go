package validate

import "tpgci/src/teamcity"

// findCycles returns each snapshot dependency cycle once, as the path of build ids
// from the first revisited build back to itself. Builds are visited in the given
// order so the result is deterministic.
func findCycles(bts []*teamcity.BuildType) [][]string {
	deps := make(map[string][]string, len(bts))
	for _, bt := range bts {
		for _, d := range bt.Dependencies {
			deps[bt.ID] = append(deps[bt.ID], d.BuildTypeID)
		}
	}

	// permanent: fully explored, not on the current path.
	// temporary: on the current DFS path.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var path []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		if permanent[id] {
			return
		}
		if temporary[id] {
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			cycle := append([]string{}, path[start:]...)
			cycles = append(cycles, append(cycle, id))
			return
		}

		temporary[id] = true
		path = append(path, id)
		for _, dep := range deps[id] {
			visit(dep)
		}
		path = path[:len(path)-1]
		delete(temporary, id)
		permanent[id] = true
	}

	for _, bt := range bts {
		visit(bt.ID)
	}
	return cycles
}
