package types

// TopicMap is a namespace of topics. The user fields describe the relation
// of the requesting user to the map and are only filled by user-scoped reads.
type TopicMap struct {
	Identifier        int64             `db:"identifier" json:"identifier"`
	Name              string            `db:"name" json:"name"`
	Description       string            `db:"description" json:"description"`
	ImagePath         string            `db:"image_path" json:"imagePath"`
	Initialised       bool              `db:"initialised" json:"initialised"`
	Published         bool              `db:"published" json:"published"`
	Promoted          bool              `db:"promoted" json:"promoted"`
	UserIdentifier    int64             `db:"user_identifier" json:"userIdentifier,omitempty"`
	Owner             bool              `db:"owner" json:"owner,omitempty"`
	CollaborationMode CollaborationMode `db:"collaboration_mode" json:"collaborationMode,omitempty"`
}

// Collaborator is a non-owner user with access to a map
type Collaborator struct {
	MapIdentifier     int64             `db:"map_identifier" json:"mapIdentifier"`
	UserIdentifier    int64             `db:"user_identifier" json:"userIdentifier"`
	CollaborationMode CollaborationMode `db:"collaboration_mode" json:"collaborationMode"`
}
