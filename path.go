package constrain

import "fmt"

// Error paths use collection notation for indexed access and dotted notation
// for named fields: "User.tags[2]", "Matrix[0][1]".

// ElementPath addresses an element of an array or mapping under parent.
func ElementPath(parent string, key any) string {
	switch k := key.(type) {
	case string:
		return fmt.Sprintf("%s[%q]", parent, k)
	default:
		return fmt.Sprintf("%s[%v]", parent, k)
	}
}

// FieldPath addresses a named field under parent.
func FieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// basePath names the root of child paths: the parent path when nested, the
// constraint's display name at the root.
func basePath(path string, c Constraint) string {
	if path != "" {
		return path
	}
	return c.Metadata().DisplayName()
}
