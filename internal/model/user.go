package model

// User represents an account as stored in the `users` table.
// Email is the natural login key and is unique and case-sensitive.
// FullName is optional and nil when the row holds NULL.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  FullName     – optional display name.
//  PasswordHash – bcrypt hashed password, never serialized.
type User struct {
    ID           uint64  `json:"id"`        // users.id
    Email        string  `json:"email"`     // users.email
    FullName     *string `json:"full_name"` // users.full_name (nullable)
    PasswordHash string  `json:"-"`         // users.hashed_password
}
