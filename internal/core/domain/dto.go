package domain

import "time"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=50"`
	FirstName string `json:"firstName" binding:"required,min=3,max=20"`
	LastName  string `json:"lastName" binding:"required,min=3,max=20"`
	Password  string `json:"password" binding:"required,min=6,max=40"`
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

// MessageResponse is the generic {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// User is the public view of a user. The password hash never leaves the Logic layer.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	LastName  string    `json:"lastName"`
	FirstName string    `json:"firstName"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Teacher is the public view of a teacher.
type Teacher struct {
	ID        int64     `json:"id"`
	LastName  string    `json:"lastName"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is both the request and response body of the session API.
// ID, Users and the timestamps are ignored on input.
type Session struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" binding:"required,max=50"`
	Date        time.Time `json:"date" binding:"required"`
	TeacherID   int64     `json:"teacher_id" binding:"required"`
	Description string    `json:"description" binding:"required,max=2500"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToUser maps a row to its public view.
func (r *UserRow) ToUser() User {
	return User{
		ID:        r.ID,
		Email:     r.Email,
		LastName:  r.LastName,
		FirstName: r.FirstName,
		Admin:     r.Admin,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToPrincipal derives the request principal from a user row.
func (r *UserRow) ToPrincipal() Principal {
	return Principal{
		ID:        r.ID,
		Username:  r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Admin:     r.Admin,
	}
}

func (r *TeacherRow) ToTeacher() Teacher {
	return Teacher{
		ID:        r.ID,
		LastName:  r.LastName,
		FirstName: r.FirstName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToSession maps a row to its public view. Users is never nil so the JSON
// body always carries an array.
func (s *SessionRow) ToSession() Session {
	users := make([]int64, len(s.Users))
	copy(users, s.Users)
	return Session{
		ID:          s.ID,
		Name:        s.Name,
		Date:        s.Date,
		TeacherID:   s.TeacherID,
		Description: s.Description,
		Users:       users,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Fields extracts the writable fields of a session request.
func (s *Session) Fields() SessionFields {
	return SessionFields{
		Name:        s.Name,
		Date:        s.Date,
		Description: s.Description,
		TeacherID:   s.TeacherID,
	}
}
