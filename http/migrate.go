package http

import (
	"net/http"

	"github.com/programme-lv/competitions/auth"
	"github.com/programme-lv/competitions/httpjson"
	"github.com/programme-lv/competitions/migrsrvc"
	"github.com/programme-lv/competitions/srvcerror"
)

func (httpserver *HttpServer) postMigrate(w http.ResponseWriter, r *http.Request) {
	requester, _, ok := auth.Requester(r.Context())
	if !ok {
		httpjson.HandleError(reqLog(r), w, srvcerror.ErrUnauthenticated())
		return
	}

	phaseID, err := pathInt(r, "phaseId")
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	res, err := httpserver.migrate.Handle(r.Context(), migrsrvc.MigrateToNextQuery{
		PhaseID:   phaseID,
		Requester: requester,
	})
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}
