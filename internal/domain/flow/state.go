// Package flow holds the ephemeral records of in-flight federated-login
// attempts. Both record types live only in the ephemeral store and are
// consumed exactly once.
package flow

import (
	"time"

	"github.com/servana-inc/servana/internal/shared/authorization"
)

// StateRecord represents one in-flight authorization attempt, keyed in the
// ephemeral store by its anti-CSRF state token. It is created by flow
// initiation, consumed atomically by the callback, and never mutated. A
// record past its TTL is indistinguishable from one that never existed.
type StateRecord struct {
	Token              string             `json:"-"`
	RequestedRole      authorization.Role `json:"requested_role"`
	RegistrationIntent bool               `json:"registration_intent"`
	ReturnTo           string             `json:"return_to,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}
