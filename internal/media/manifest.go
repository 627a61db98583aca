package media

import "strings"

// Ref identifies one remote asset attached to a row.
type Ref struct {
	URL      string
	PublicID string
	Type     string
}

// ParseManifest expands the comma-joined publicID and type columns into
// aligned refs. A missing type entry defaults to "image" so older rows stay
// releasable.
func ParseManifest(publicIDs, types *string) []Ref {
	if publicIDs == nil || *publicIDs == "" {
		return nil
	}

	ids := strings.Split(*publicIDs, ",")

	var kinds []string
	if types != nil && *types != "" {
		kinds = strings.Split(*types, ",")
	}

	refs := make([]Ref, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		kind := "image"
		if i < len(kinds) {
			if k := strings.TrimSpace(kinds[i]); k != "" {
				kind = k
			}
		}
		refs = append(refs, Ref{PublicID: id, Type: kind})
	}
	return refs
}

// JoinRefs collapses refs back into the three comma-joined columns. Returns
// nils when there are no refs so empty manifests stay NULL in storage.
func JoinRefs(refs []Ref) (urls, publicIDs, types *string) {
	if len(refs) == 0 {
		return nil, nil, nil
	}

	us := make([]string, 0, len(refs))
	ids := make([]string, 0, len(refs))
	kinds := make([]string, 0, len(refs))
	for _, r := range refs {
		us = append(us, r.URL)
		ids = append(ids, r.PublicID)
		kind := r.Type
		if kind == "" {
			kind = "image"
		}
		kinds = append(kinds, kind)
	}

	u := strings.Join(us, ",")
	id := strings.Join(ids, ",")
	kind := strings.Join(kinds, ",")
	return &u, &id, &kind
}
