package submsrvc

import (
	"fmt"

	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

func newErrSecretMismatch() *srvcerror.Error {
	return srvcerror.ErrAuthorization("submission secret invalid")
}

func newErrUnknownStatus(status string) *srvcerror.Error {
	return srvcerror.ErrInvalidRequest(fmt.Sprintf("unknown submission status %q", status))
}

func newErrOwnerMissing() *srvcerror.Error {
	return srvcerror.ErrAuthorization("submission owner is required")
}

func newErrNotScorable(status subm.Status) *srvcerror.Error {
	return srvcerror.ErrInvalidTransition(
		fmt.Sprintf("cannot attach scores to a submission in status %s", status))
}

func newErrGroupNotScorable() *srvcerror.Error {
	return srvcerror.ErrInvalidRequest("group submissions carry no scores, only their children do")
}

func newErrColumnOfOtherLeaderboard() *srvcerror.Error {
	return srvcerror.ErrInvalidRequest("column belongs to another leaderboard than the submission's scores")
}

func newErrChildNotMigratable() *srvcerror.Error {
	return srvcerror.ErrInvalidRequest("only top-level submissions can be migrated")
}
