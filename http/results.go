package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/programme-lv/competitions/httpjson"
	"github.com/programme-lv/competitions/results"
	"github.com/programme-lv/competitions/srvcerror"
)

func exportCacheKey(compID int64, f results.Format, sel results.Selector) string {
	return fmt.Sprintf("results:%d:%s:%s", compID, f, sel)
}

func selectorFromQuery(r *http.Request) (results.Selector, error) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		lbID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return results.Selector{}, srvcerror.ErrInvalidRequest("invalid leaderboard id").SetDebug(err)
		}
		return results.ByID(lbID), nil
	}
	if q.Has("title") {
		return results.ByTitle(q.Get("title")), nil
	}
	return results.All(), nil
}

func (httpserver *HttpServer) getResults(format results.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		compID, err := pathInt(r, "compId")
		if err != nil {
			httpjson.HandleError(reqLog(r), w, err)
			return
		}
		sel, err := selectorFromQuery(r)
		if err != nil {
			httpjson.HandleError(reqLog(r), w, err)
			return
		}

		cacheKey := exportCacheKey(compID, format, sel)
		if cached, found := httpserver.exportCache.Get(cacheKey); found {
			if exp, ok := cached.(results.Export); ok {
				writeExport(w, exp)
				return
			}
		}

		res, err, _ := httpserver.sfGroup.Do(cacheKey, func() (interface{}, error) {
			if cached, found := httpserver.exportCache.Get(cacheKey); found {
				if exp, ok := cached.(results.Export); ok {
					return exp, nil
				}
			}

			// shared by every waiter, so one client leaving must not cancel it
			exp, err := httpserver.export.Handle(context.WithoutCancel(r.Context()), results.ExportQuery{
				CompetitionID: compID,
				Format:        format,
				Selector:      sel,
			})
			if err != nil {
				return nil, err
			}

			httpserver.exportCache.SetDefault(cacheKey, exp)
			return exp, nil
		})
		if err != nil {
			httpjson.HandleError(reqLog(r), w, err)
			return
		}

		writeExport(w, res.(results.Export))
	}
}

func writeExport(w http.ResponseWriter, exp results.Export) {
	w.Header().Set("Content-Type", exp.ContentType)
	if exp.Filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+exp.Filename)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Body)
}
