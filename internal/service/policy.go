package service

import (
	"fmt"
	"time"

	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/session"
)

type DenyReason string

const (
	ReasonArchived      DenyReason = "archived"
	ReasonLoginRequired DenyReason = "login_required"
	ReasonPermission    DenyReason = "permission"
	ReasonPassword      DenyReason = "password"
	ReasonNotFound      DenyReason = "not_found"
	ReasonUnavailable   DenyReason = "unavailable"
	ReasonLinkRequired  DenyReason = "secure_link_required"
)

// PolicyDeniedError carries the first failing gate.
type PolicyDeniedError struct {
	Reason DenyReason
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

// Message is safe to show to the caller.
func (e *PolicyDeniedError) Message() string {
	switch e.Reason {
	case ReasonArchived:
		return "This document has been archived and is no longer available."
	case ReasonLoginRequired:
		return "Please log in to access this document."
	case ReasonPassword:
		return "This document is password protected."
	case ReasonLinkRequired:
		return "This document can only be opened through a secure link."
	}
	return "You do not have permission to access this document."
}

// Caller is the identity and session a request is evaluated for.
type Caller struct {
	User     *model.User
	Elevated bool
	Session  *session.Session
}

func (c Caller) Authenticated() bool {
	return c.User != nil
}

func (c Caller) UserID() *string {
	if c.User == nil {
		return nil
	}
	id := c.User.ID
	return &id
}

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &PolicyDeniedError{Reason: d.Reason}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// AccessPolicy runs the ordered access gates. It holds no per-request state.
type AccessPolicy struct {
	settings model.Settings
	now      func() time.Time
}

func NewAccessPolicy(settings model.Settings) *AccessPolicy {
	return &AccessPolicy{settings: settings, now: time.Now}
}

func (p *AccessPolicy) Settings() model.Settings {
	return p.settings
}

// Evaluate checks archived, login, private, password and assignment gates in
// that order and stops at the first failure. Elevated callers skip all but
// the first two. A correct password unlocks the document for the session.
func (p *AccessPolicy) Evaluate(doc *model.Document, caller Caller, password string) Decision {
	if doc.IsArchived() {
		return deny(ReasonArchived)
	}

	if p.settings.RequireLogin && !caller.Authenticated() {
		return deny(ReasonLoginRequired)
	}

	if doc.Private && !caller.Elevated {
		return deny(ReasonPermission)
	}

	if doc.PasswordProtected && !caller.Elevated && !p.unlocked(doc, caller, password) {
		return deny(ReasonPassword)
	}

	if doc.AssignedUsers.Len() > 0 && !caller.Elevated {
		if !caller.Authenticated() || !doc.AssignedUsers.Has(caller.User.ID) {
			return deny(ReasonPermission)
		}
	}

	return allow()
}

func (p *AccessPolicy) unlocked(doc *model.Document, caller Caller, password string) bool {
	if caller.Session != nil && caller.Session.PasswordUnlocked(doc.ID) {
		return true
	}
	if !VerifyPassword(password, doc.PasswordHash) {
		return false
	}
	if caller.Session != nil {
		caller.Session.UnlockPassword(doc.ID, p.now())
	}
	return true
}
