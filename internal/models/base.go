package models

import "github.com/google/uuid"

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists the relational models in migration order.
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Post{},
		&Image{},
		&PostLike{},
		&Comment{},
		&CommentLike{},
	}
}
