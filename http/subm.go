package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/programme-lv/competitions/auth"
	"github.com/programme-lv/competitions/httpjson"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
	"github.com/programme-lv/competitions/submsrvc"
)

func pathInt(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, srvcerror.ErrInvalidRequest("invalid " + name).SetDebug(err)
	}
	return v, nil
}

func pathUuid(r *http.Request, name string) (uuid.UUID, error) {
	v, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, srvcerror.ErrInvalidRequest("invalid " + name).SetDebug(err)
	}
	return v, nil
}

func (httpserver *HttpServer) postSubm(w http.ResponseWriter, r *http.Request) {
	type createSubmRequest struct {
		Data        string `json:"data" validate:"required,uuid"`
		Description string `json:"description" validate:"max=2000"`
		IsPublic    bool   `json:"is_public"`
	}

	ownerUuid, username, ok := auth.Requester(r.Context())
	if !ok {
		httpjson.HandleError(reqLog(r), w, srvcerror.ErrUnauthenticated())
		return
	}

	phaseID, err := pathInt(r, "phaseId")
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	var request createSubmRequest
	err = httpjson.DecodeAndValidate(r, httpserver.validate, &request)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	entity, err := httpserver.subms.CreateSubm(r.Context(), submsrvc.CreateSubmParams{
		Owner:       subm.Participant{UUID: ownerUuid, Username: username},
		PhaseID:     phaseID,
		DataKey:     uuid.MustParse(request.Data),
		Description: request.Description,
		IsPublic:    request.IsPublic,
	})
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, mapSubm(entity))
}

func (httpserver *HttpServer) getSubm(w http.ResponseWriter, r *http.Request) {
	submUuid, err := pathUuid(r, "submUuid")
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	view, err := httpserver.subms.GetSubmView(r.Context(), submUuid)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubmView(view))
}

// patchSubmStatus is the execution collaborator's status callback.
// Fields are left to ReportStatus, which checks the secret first.
func (httpserver *HttpServer) patchSubmStatus(w http.ResponseWriter, r *http.Request) {
	type statusRequest struct {
		Secret        string `json:"secret"`
		Status        string `json:"status"`
		StatusDetails string `json:"status_details"`
	}

	submUuid, err := pathUuid(r, "submUuid")
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	var request statusRequest
	err = httpjson.Decode(r, &request)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	updated, err := httpserver.subms.ReportStatus(r.Context(), submsrvc.ReportStatusParams{
		SubmUUID: submUuid,
		Secret:   request.Secret,
		Status:   request.Status,
		Details:  request.StatusDetails,
	})
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubm(updated))
}

func (httpserver *HttpServer) postScore(w http.ResponseWriter, r *http.Request) {
	type scoreRequest struct {
		Secret   string   `json:"secret"`
		ColumnID int64    `json:"column_id" validate:"required"`
		Score    *float64 `json:"score" validate:"required"`
	}

	submUuid, err := pathUuid(r, "submUuid")
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	var request scoreRequest
	err = httpjson.Decode(r, &request)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	// the secret goes first, field validation only for the collaborator
	_, err = httpserver.subms.Authorize(r.Context(), submUuid, request.Secret)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	err = httpjson.Validate(httpserver.validate, &request)
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	err = httpserver.subms.AttachScore(r.Context(), submsrvc.AttachScoreParams{
		SubmUUID: submUuid,
		ColumnID: request.ColumnID,
		Value:    *request.Score,
	})
	if err != nil {
		httpjson.HandleError(reqLog(r), w, err)
		return
	}

	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, Score{ColumnID: request.ColumnID, Score: *request.Score})
}
