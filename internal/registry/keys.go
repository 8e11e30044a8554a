package registry

import "fmt"

// Key layout:
//
//	project/<id>        -> Project JSON
//	project_idx/<name>  -> project id (name uniqueness guard)
func projectKey(id string) []byte {
	return []byte(fmt.Sprintf("project/%s", id))
}

func nameIdxKey(name string) []byte {
	return []byte(fmt.Sprintf("project_idx/%s", name))
}

func projectPrefix() []byte {
	return []byte("project/")
}
