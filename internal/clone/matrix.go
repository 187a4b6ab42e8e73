package clone

import "sort"

// ProjectMatrix counts cross-project leaks shared by each pair of projects.
type ProjectMatrix struct {
	Projects []string `json:"projects"`
	// Counts[i][j] is the number of leaks touching both Projects[i] and
	// Projects[j]. The diagonal holds each project's total leak count.
	Counts [][]int `json:"counts"`
}

// Matrix builds the project-by-project leak matrix. Projects are sorted.
func (r *Report) Matrix() ProjectMatrix {
	index := make(map[string]int)
	if r != nil {
		for _, l := range r.CrossProjectLeakage {
			for _, p := range l.Projects {
				index[p] = 0
			}
		}
	}
	projects := make([]string, 0, len(index))
	for p := range index {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	for i, p := range projects {
		index[p] = i
	}

	counts := make([][]int, len(projects))
	for i := range counts {
		counts[i] = make([]int, len(projects))
	}
	if r != nil {
		for _, l := range r.CrossProjectLeakage {
			for _, a := range l.Projects {
				for _, b := range l.Projects {
					counts[index[a]][index[b]]++
				}
			}
		}
	}
	return ProjectMatrix{Projects: projects, Counts: counts}
}

// Count returns the number of leaks shared by projects a and b.
func (m ProjectMatrix) Count(a, b string) int {
	i, j := -1, -1
	for k, p := range m.Projects {
		if p == a {
			i = k
		}
		if p == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}
