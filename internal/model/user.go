package model

import (
	"strings"
	"time"
)

const (
	PermissionAdmin  = "admin"
	PermissionSeller = "seller"
	PermissionAuthor = "author"
	PermissionNormal = "normal"
)

const (
	ProfileKindUser   = "user"
	ProfileKindSeller = "seller"
	ProfileKindAuthor = "author"
)

// User represents an account keyed by phone number
type User struct {
	ID           int        `json:"id"`
	PhoneNumber  string     `json:"phone_number"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsAuthor     bool       `json:"is_author"`
	IsSeller     bool       `json:"is_seller"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login"`

	Profile *Profile `json:"-"`
}

// Profile is the single per-role extension of a user.
type Profile struct {
	ID        int     `json:"id"`
	UserID    int     `json:"user_id"`
	Kind      string  `json:"kind"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// FullName mirrors how authors are shown on articles.
func (p *Profile) FullName() string {
	if p == nil || p.FirstName == nil || p.LastName == nil || *p.FirstName == "" || *p.LastName == "" {
		return "Unknown"
	}
	return *p.FirstName + " " + *p.LastName
}

// ProfileKind picks the profile variant for the user's role flags.
func (u *User) ProfileKind() string {
	switch {
	case u.IsAuthor:
		return ProfileKindAuthor
	case u.IsSeller:
		return ProfileKindSeller
	default:
		return ProfileKindUser
	}
}

// Roles returns the role names carried in access tokens.
func (u *User) Roles() []string {
	var roles []string
	if u.IsSuperuser {
		roles = append(roles, PermissionAdmin)
	}
	if u.IsSeller {
		roles = append(roles, PermissionSeller)
	}
	if u.IsAuthor {
		roles = append(roles, PermissionAuthor)
	}
	return roles
}

// Permissions is the comma separated role list, or "normal".
func (u *User) Permissions() string {
	roles := u.Roles()
	if len(roles) == 0 {
		return PermissionNormal
	}
	return strings.Join(roles, ",")
}

func (u *User) FirstName() *string {
	if u.Profile == nil {
		return nil
	}
	return u.Profile.FirstName
}

func (u *User) LastName() *string {
	if u.Profile == nil {
		return nil
	}
	return u.Profile.LastName
}

// UserInfo is the user payload returned by /auth/user and the admin list.
type UserInfo struct {
	ID          int     `json:"id"`
	PhoneNumber string  `json:"phone_number"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	IsActive    bool    `json:"is_active"`
	IsStaff     bool    `json:"is_staff"`
	IsSuperuser bool    `json:"is_superuser"`
	IsAuthor    bool    `json:"is_author"`
	IsSeller    bool    `json:"is_seller"`
	Permissions string  `json:"permissions"`
}

// UserDetail adds timestamps to UserInfo for the admin detail view.
type UserDetail struct {
	UserInfo
	CreatedAt time.Time  `json:"created_date"`
	UpdatedAt time.Time  `json:"updated_date"`
	LastLogin *time.Time `json:"last_login"`
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName(),
		LastName:    u.LastName(),
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsAuthor:    u.IsAuthor,
		IsSeller:    u.IsSeller,
		Permissions: u.Permissions(),
	}
}

func (u *User) Detail() UserDetail {
	return UserDetail{
		UserInfo:  u.Info(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

// User type filter values accepted by the admin user list
const (
	UserTypeSuperuser = "is_superuser"
	UserTypeAuthor    = "is_author"
	UserTypeSeller    = "is_seller"
	UserTypeNormal    = "normal"
)

// UserPermissionLabels maps user_type filter keys to their display labels.
var UserPermissionLabels = map[string]string{
	"":                "همه‌ی کاربران",
	UserTypeSuperuser: "مدیر",
	UserTypeAuthor:    "نویسنده",
	UserTypeSeller:    "فروشنده",
	UserTypeNormal:    "کاربر عادی",
}

// UserFilters holds the admin user list filters
type UserFilters struct {
	UserType *string
	IsActive *bool
	Search   *string
	Page     Page
}

// AdminUpdateUserRequest is a partial update; nil fields are left untouched.
type AdminUpdateUserRequest struct {
	PhoneNumber *string `json:"phone_number"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsAuthor    *bool   `json:"is_author"`
	IsSeller    *bool   `json:"is_seller"`
}

type AdminCreateUserRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	IsSuperuser bool   `json:"is_superuser"`
	IsAuthor    bool   `json:"is_author"`
	IsSeller    bool   `json:"is_seller"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
}
