package categorytree

// Row is one visible line of a rendered category sidebar.
type Row struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"hasChildren"`
	Expanded    bool   `json:"expanded"`
	Active      bool   `json:"active"`
}

// Flatten renders the forest into visible rows. Children are emitted only
// below expanded nodes. expanded is owned by the caller and only read here.
func Flatten(roots []*Node, expanded map[string]bool, activeSlug string) []Row {
	rows := make([]Row, 0, len(roots))
	return flatten(rows, roots, expanded, activeSlug, 0)
}

func flatten(rows []Row, nodes []*Node, expanded map[string]bool, activeSlug string, depth int) []Row {
	for _, n := range nodes {
		open := expanded[n.ID]
		rows = append(rows, Row{
			ID:          n.ID,
			Name:        n.Name,
			Slug:        n.Slug,
			ImageURL:    n.ImageURL,
			Depth:       depth,
			HasChildren: len(n.Children) > 0,
			Expanded:    open,
			Active:      activeSlug != "" && n.Slug == activeSlug,
		})
		if open && len(n.Children) > 0 {
			rows = flatten(rows, n.Children, expanded, activeSlug, depth+1)
		}
	}
	return rows
}

// ExpandPath marks every ancestor of id as expanded so the active category
// is visible. A new map is returned; base is left untouched.
func ExpandPath(roots []*Node, id string, base map[string]bool) map[string]bool {
	out := make(map[string]bool, len(base))
	for k, v := range base {
		out[k] = v
	}
	path := Path(roots, id)
	for i := 0; i < len(path)-1; i++ {
		out[path[i].ID] = true
	}
	return out
}
