package migrsrvc

import "github.com/programme-lv/competitions/srvcerror"

func newErrNoPermissions() *srvcerror.Error {
	return srvcerror.ErrAuthorization("You do not have administrative permissions for this competition")
}
