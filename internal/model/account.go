package model

import "time"

type Role string

const (
	RoleConstructor Role = "Constructor"
	RoleContractor  Role = "Contractor"
	RoleWorker      Role = "Worker"
)

// Roles lists the roles in display order.
var Roles = []Role{RoleConstructor, RoleContractor, RoleWorker}

func (r Role) Valid() bool {
	switch r {
	case RoleConstructor, RoleContractor, RoleWorker:
		return true
	}
	return false
}

// AdQuota is the maximum number of ads an account with this role may own.
func (r Role) AdQuota() int {
	if r == RoleConstructor {
		return 5
	}
	return 1
}

type VerificationState string

const (
	StateCodeSent             VerificationState = "code_sent"
	StateCodeVerified         VerificationState = "code_verified"
	StateRegistrationComplete VerificationState = "registration_complete"
)

// swagger:model
type Account struct {
	BaseModel
	PhoneNumber       string            `gorm:"size:15;uniqueIndex;not null" json:"phoneNumber"`
	Role              Role              `gorm:"size:20" json:"role,omitempty"`
	NationalCode      *string           `gorm:"size:10;uniqueIndex" json:"nationalCode,omitempty"`
	VerificationState VerificationState `gorm:"size:30;not null" json:"verificationState"`
	CodeHash          *string           `gorm:"size:100" json:"-"`
	IsVerified        bool              `gorm:"not null;default:false" json:"isVerified"`
	LastSeen          *time.Time        `json:"lastSeen,omitempty"`
}

func (a *Account) HasPendingCode() bool {
	return a.CodeHash != nil && *a.CodeHash != ""
}
