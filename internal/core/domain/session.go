package domain

// Namespace is the storage partition holding one session's token and identity.
type Namespace string

const (
	NamespaceStandard Namespace = "standard"
	NamespaceAdmin    Namespace = "admin"
)

// Namespaces lists every partition in precedence order.
var Namespaces = []Namespace{NamespaceStandard, NamespaceAdmin}

// TokenKey is the durable-storage key of the namespace's token.
func (n Namespace) TokenKey() string {
	if n == NamespaceAdmin {
		return "adminToken"
	}
	return "token"
}

// IdentityKey is the durable-storage key of the namespace's identity JSON.
func (n Namespace) IdentityKey() string {
	if n == NamespaceAdmin {
		return "adminUser"
	}
	return "user"
}

// SessionRecord pairs an identity with its token inside one namespace.
type SessionRecord struct {
	Namespace Namespace `json:"namespace"`
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
}

// SessionEventKind classifies changes broadcast to session subscribers.
type SessionEventKind string

const (
	SessionLoggedIn  SessionEventKind = "logged_in"
	SessionUpdated   SessionEventKind = "updated"
	SessionLoggedOut SessionEventKind = "logged_out"
	SessionExpired   SessionEventKind = "expired"
)

// SessionEvent is delivered to every subscriber after a session change.
// Record is nil for logout and expiry.
type SessionEvent struct {
	Kind   SessionEventKind
	Record *SessionRecord
}
