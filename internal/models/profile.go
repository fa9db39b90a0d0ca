package models

// Profile is the role-specific face of a user account. Each role exposes
// the same identity surface plus its own payload; handlers switch on
// ProfileRole to shape responses.
type Profile interface {
	ProfileRole() UserRole
	ProfileUserID() string
	DisplayName() string
}

func (p *StudentProfile) ProfileRole() UserRole { return RoleStudent }
func (p *StudentProfile) ProfileUserID() string { return p.UserID }
func (p *StudentProfile) DisplayName() string   { return p.FullName }

func (p *TeacherProfile) ProfileRole() UserRole { return RoleTeacher }
func (p *TeacherProfile) ProfileUserID() string { return p.UserID }
func (p *TeacherProfile) DisplayName() string   { return p.FullName }

// StaffProfile covers methodist, dean and admin accounts, which carry no
// group or teaching payload.
type StaffProfile struct {
	ID       string   `db:"id" json:"id"`
	UserID   string   `db:"user_id" json:"user_id"`
	Role     UserRole `db:"role" json:"role"`
	FullName string   `db:"full_name" json:"full_name"`
	Phone    *string  `db:"phone" json:"phone,omitempty"`
}

func (p *StaffProfile) ProfileRole() UserRole { return p.Role }
func (p *StaffProfile) ProfileUserID() string { return p.UserID }
func (p *StaffProfile) DisplayName() string   { return p.FullName }
