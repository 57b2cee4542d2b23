package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&GroupMember{},
		&Message{},
		&ReadMark{},
		&GroupReadState{},
	}
}
