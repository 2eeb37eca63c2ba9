package quiz

import (
	"github.com/anupamd/revise/internal/verify"
)

// initDoneMsg is sent when session resolution finishes.
type initDoneMsg struct {
	Err error
}

// verifyUpdateMsg carries one verification lifecycle update off the
// orchestrator's channel.
type verifyUpdateMsg verify.Update

// updatesClosedMsg is sent when the verification channel drains shut.
type updatesClosedMsg struct{}
