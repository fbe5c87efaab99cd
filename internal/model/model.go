package model

// All lists every model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}}
}
