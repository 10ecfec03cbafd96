package config

const (
	// MaxProjectNameLength is the maximum length for project names.
	MaxProjectNameLength = 100

	// MaxDescriptionLength bounds project and task descriptions.
	MaxDescriptionLength = 500

	// MaxTaskTitleLength is the maximum length for task titles.
	MaxTaskTitleLength = 100

	// MaxUsernameLength matches users.username VARCHAR(64).
	MaxUsernameLength = 64

	// MinPasswordLength is enforced at registration only.
	MinPasswordLength = 8
)
