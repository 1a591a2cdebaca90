package users

import "time"

// User represents the item stored in the users DynamoDB table.
type User struct {
	UserID    string    `dynamodbav:"user_id" json:"id"` // PK
	Name      string    `dynamodbav:"name" json:"name"`
	Email     string    `dynamodbav:"email" json:"email"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

// UpdateUserInput carries the mutable fields of a user; nil means unchanged.
type UpdateUserInput struct {
	Name  *string
	Email *string
}
